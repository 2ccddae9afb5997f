package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/service"
	"github.com/nextmove-ai/nextmove/internal/store"
)

type DecisionHandler struct {
	svc *service.DecisionService
}

func NewDecisionHandler(svc *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

// GetCurrent returns the lead's one current decision.
func (h *DecisionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	decision, err := h.svc.Current(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no current decision for lead")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get decision")
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	decisions, err := h.svc.History(r.Context(), leadID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions, "count": len(decisions)})
}
