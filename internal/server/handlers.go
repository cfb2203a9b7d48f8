package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tokenScope/internal/stats"
)

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Tokens   int    `json:"tokens"`
}

type statsResponse struct {
	Feed     stats.Snapshot `json:"feed"`
	Sessions int            `json:"sessions"`
}

// handleWS opens a session and hands the upgraded connection to its pumps.
// The context is the server's run context, not the request's: the request
// context dies when this handler returns, long before the connection does.
func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Open()
	if err != nil {
		s.logger.Warn("rejecting websocket connection", zap.Error(err))
		http.Error(w, "session limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.registry.Release(sess)
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(conn, sess, s.logger)
	go client.run(ctx, func() { s.registry.Release(sess) })
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, healthResponse{
		Status:   "ok",
		Sessions: s.registry.Count(),
		Tokens:   len(s.poller.Current()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Sessions: s.registry.Count()}
	if s.collector != nil {
		resp.Feed = s.collector.Snapshot()
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.poller.Current())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
