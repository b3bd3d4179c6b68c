package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github-repo-radar/internal/domain"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleFeed 返回一次渲染所需的完整快照
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.dash.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.dash.Refresh()
	writeJSON(w, s.dash.Snapshot())
}

// handleLoadMore 等价于列表末尾哨兵进入视口：守卫条件不满足时就是 no-op
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	s.dash.OnSentinelVisible()
	writeJSON(w, s.dash.Snapshot())
}

// handleView 更新视图状态，缺省字段保持不变
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab       *string `json:"tab"`
		Range     *string `json:"range"`
		Query     *string `json:"query"`
		SmartMode *bool   `json:"smart_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if req.Tab != nil {
		switch tab := domain.Tab(*req.Tab); tab {
		case domain.TabTrending, domain.TabLatest, domain.TabSaved:
			s.dash.SetTab(tab)
		default:
			http.Error(w, "unknown tab", http.StatusBadRequest)
			return
		}
	}
	if req.Range != nil {
		switch timeRange := domain.TimeRange(*req.Range); timeRange {
		case domain.RangeToday, domain.RangeWeek, domain.RangeMonth:
			s.dash.SetRange(timeRange)
		default:
			http.Error(w, "unknown range", http.StatusBadRequest)
			return
		}
	}
	if req.Query != nil {
		s.dash.SetQuery(*req.Query)
	}
	if req.SmartMode != nil {
		s.dash.SetSmartMode(*req.SmartMode)
	}

	writeJSON(w, s.dash.Snapshot())
}

func (s *Server) handleToggleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	repo, ok := s.dash.FindRepo(req.ID)
	if !ok {
		http.Error(w, "repo not found", http.StatusNotFound)
		return
	}

	saved := s.dash.ToggleSave(repo)
	writeJSON(w, map[string]any{"id": req.ID, "saved": saved})
}

func (s *Server) handleSmartFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query *string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Query != nil {
		s.dash.SetQuery(*req.Query)
	}

	s.dash.RunSmartFilter()
	writeJSON(w, s.dash.Snapshot())
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	owner, name := r.PathValue("owner"), r.PathValue("name")
	if owner == "" || name == "" {
		http.Error(w, "owner and name required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	shares, err := s.dash.Languages(ctx, owner, name)
	if err != nil {
		// 失败交给前端渲染内联重试入口
		http.Error(w, "languages unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"languages": shares})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid repo id", http.StatusBadRequest)
		return
	}

	repo, ok := s.dash.FindRepo(id)
	if !ok {
		http.Error(w, "repo not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Insight 自己会降级到兜底文案，这里永远 200
	writeJSON(w, map[string]any{"id": id, "insight": s.dash.Insight(ctx, repo)})
}

func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"toasts": s.dash.Snapshot().Toasts})
}

func (s *Server) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid toast id", http.StatusBadRequest)
		return
	}
	s.dash.DismissToast(id)
	w.WriteHeader(http.StatusNoContent)
}
