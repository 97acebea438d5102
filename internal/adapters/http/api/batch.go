package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/domain/types"
)

const maxBatchBodyBytes = 1 << 20

// BatchDependencies defines the interface for batch leaderboard computations.
type BatchDependencies interface {
	Batch(ctx context.Context, reqs []model.BoardRequest) ([]types.BatchResult, error)
}

// BatchHandler handles batch requests.
type BatchHandler struct {
	deps BatchDependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

type batchRequest struct {
	Requests []model.BoardRequest `json:"requests"`
}

type batchResponse struct {
	Results []types.BatchResult `json:"results"`
}

// HandlePostLeaderboards handles POST /leaderboards requests.
func (h *BatchHandler) HandlePostLeaderboards(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_leaderboards"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	dec.DisallowUnknownFields()
	var body batchRequest
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(body.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind(op, ErrBadRequest, errors.New("no requests")))
		return
	}

	results, err := h.deps.Batch(r.Context(), body.Requests)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}
