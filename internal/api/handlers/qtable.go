package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/service"
)

type QTableHandler struct {
	svc *service.QTableService
}

func NewQTableHandler(svc *service.QTableService) *QTableHandler {
	return &QTableHandler{svc: svc}
}

// seedRequest maps "stage:bucket" -> action -> value.
type seedRequest struct {
	Values map[string]map[string]float64 `json:"values"`
}

// Seed bulk-loads prior Q-values. Overwrites per key, so re-posting the same
// payload is a no-op.
func (h *QTableHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values is required")
		return
	}

	var entries []domain.QEntry
	for rawState, actions := range req.Values {
		state, err := domain.ParseStateID(rawState)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for rawAction, value := range actions {
			if !domain.ValidAction(rawAction) {
				writeError(w, http.StatusBadRequest, "unknown action "+rawAction)
				return
			}
			entries = append(entries, domain.QEntry{
				State:  state,
				Action: domain.ActionKind(rawAction),
				Value:  value,
			})
		}
	}

	if err := h.svc.Seed(r.Context(), entries); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownState), errors.Is(err, service.ErrUnknownAction):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to seed q-table")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"seeded": len(entries)})
}

// Inspect dumps every materialized Q-table row.
func (h *QTableHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Inspect(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read q-table")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
