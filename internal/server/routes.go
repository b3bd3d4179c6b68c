package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	// 信息流
	s.mux.HandleFunc("GET /api/feed", s.handleFeed)
	s.mux.HandleFunc("POST /api/feed/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /api/feed/more", s.handleLoadMore)

	// 视图状态（标签页 / 时间范围 / 搜索词 / 智能开关）
	s.mux.HandleFunc("POST /api/view", s.handleView)

	// 收藏与 AI 筛选
	s.mux.HandleFunc("POST /api/saved/toggle", s.handleToggleSave)
	s.mux.HandleFunc("POST /api/filter/smart", s.handleSmartFilter)

	// 单仓库的增强信息
	s.mux.HandleFunc("GET /api/repos/{owner}/{name}/languages", s.handleLanguages)
	s.mux.HandleFunc("GET /api/repos/{id}/insight", s.handleInsight)

	// 提示
	s.mux.HandleFunc("GET /api/toasts", s.handleToasts)
	s.mux.HandleFunc("POST /api/toasts/{id}/dismiss", s.handleDismissToast)
}
