package server

import (
	"context"
	"net/http"

	"github-repo-radar/internal/service"
)

// Server 仪表盘的 JSON API 层，只做编解码，状态全在 Dashboard 里
type Server struct {
	dash *service.Dashboard
	mux  *http.ServeMux
}

// New 创建服务器并注册路由
func New(dash *service.Dashboard) *Server {
	s := &Server{dash: dash, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler 暴露底层 mux（测试用 httptest 直接挂）
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe 启动监听；ctx 取消时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()
	return httpSrv.ListenAndServe()
}
