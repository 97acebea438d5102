// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/ranksum/internal/app"
	"github.com/okian/ranksum/internal/domain/types"
	"github.com/okian/ranksum/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	SummaryDependencies
	BatchDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	summaryHandler     *SummaryHandler
	batchHandler       *BatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps),
		summaryHandler:     NewSummaryHandler(deps),
		batchHandler:       NewBatchHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.Handle(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("/summary", "summary", s.summaryHandler.HandleGetSummary)
	route("/leaderboards", "leaderboards", s.batchHandler.HandlePostLeaderboards)
}

type errorResponse = types.Error

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service error to its status and code. Server-side
// failures are logged with the request identifier.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := service.ErrorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Warn(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("code", code),
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err))
	}
	writeError(w, status, code, Wrap(op, err))
}

func statusFor(code string) int {
	switch code {
	case service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodeBackpressure:
		return http.StatusTooManyRequests
	case service.CodeSourceError:
		return http.StatusBadGateway
	case service.CodeCanceled:
		return http.StatusGatewayTimeout
	case service.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
