package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/service"
	"github.com/nextmove-ai/nextmove/internal/store"
)

type InteractionHandler struct {
	engine *service.EngineService
}

func NewInteractionHandler(engine *service.EngineService) *InteractionHandler {
	return &InteractionHandler{engine: engine}
}

type submitInteractionRequest struct {
	Channel    string            `json:"channel"`
	Direction  string            `json:"direction"`
	Status     string            `json:"status"`
	Extraction domain.Extraction `json:"extraction"`
}

// Submit reports one completed interaction and returns the resulting decision.
func (h *InteractionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req submitInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel := domain.Channel(req.Channel)
	switch channel {
	case domain.ChannelVoice, domain.ChannelSMS, domain.ChannelEmail:
	default:
		writeError(w, http.StatusBadRequest, "invalid channel")
		return
	}

	direction := domain.Direction(req.Direction)
	if direction == "" {
		direction = domain.DirectionOutbound
	}
	if direction != domain.DirectionInbound && direction != domain.DirectionOutbound {
		writeError(w, http.StatusBadRequest, "invalid direction")
		return
	}

	status := domain.InteractionStatus(req.Status)
	switch status {
	case domain.InteractionAnswered, domain.InteractionNoAnswer, domain.InteractionVoicemail,
		domain.InteractionReceived, domain.InteractionOptedOut:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	result, err := h.engine.ProcessInteraction(r.Context(), leadID, service.InteractionInput{
		Channel:    channel,
		Direction:  direction,
		Status:     status,
		Extraction: req.Extraction,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process interaction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"interaction_id": result.Interaction.ID,
		"stage_before":   result.StageBefore,
		"stage":          result.Lead.Stage,
		"decision":       result.Decision,
		"transition":     result.Transition,
	})
}
