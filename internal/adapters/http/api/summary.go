package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/ranksum/internal/app"
	"github.com/okian/ranksum/internal/domain/types"
)

const defaultSummaryTop = 10

// SummaryDependencies defines the interface for top-N summaries.
type SummaryDependencies interface {
	Summary(ctx context.Context, req service.SummaryRequest) (types.Summary, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /summary?division=&columns=&top=&func= requests.
// top defaults to 10 and func to AVG.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	req, err := parseBoardRequest(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	top, err := intParam(q, "top", defaultSummaryTop, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	fn := strings.TrimSpace(q.Get("func"))
	if fn == "" {
		fn = "AVG"
	}

	sum, err := h.deps.Summary(r.Context(), service.SummaryRequest{Request: req, Top: int(top), Func: fn})
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
