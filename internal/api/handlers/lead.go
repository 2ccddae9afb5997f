package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/service"
	"github.com/nextmove-ai/nextmove/internal/store"
)

type LeadHandler struct {
	svc     *service.LeadService
	signals *service.SignalService
}

func NewLeadHandler(svc *service.LeadService, signals *service.SignalService) *LeadHandler {
	return &LeadHandler{svc: svc, signals: signals}
}

type createLeadRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	PreferredChannel string `json:"preferred_channel"`
	Stage            string `json:"stage"`
	CampaignGoal     string `json:"campaign_goal"`
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.svc.Create(r.Context(), service.CreateLeadInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		Email:            req.Email,
		PreferredChannel: domain.Channel(req.PreferredChannel),
		Stage:            domain.Stage(req.Stage),
		CampaignGoal:     req.CampaignGoal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNameRequired),
			errors.Is(err, service.ErrNoContactInfo),
			errors.Is(err, service.ErrInvalidStage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create lead")
		}
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	lead, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}

	sc, err := h.signals.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get signal context")
		return
	}

	writeJSON(w, http.StatusOK, sc)
}

func (h *LeadHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	interactions, err := h.svc.Interactions(r.Context(), id, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list interactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interactions": interactions, "count": len(interactions)})
}

func (h *LeadHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	events, err := h.svc.Events(r.Context(), id, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
