package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInteractionCompleted EventType = "interaction_completed"
	EventSignalsMerged        EventType = "signals_merged"
	EventStageChanged         EventType = "stage_changed"
	EventQUpdate              EventType = "q_update"
	EventDecisionProduced     EventType = "decision_produced"
)

// Event is one append-only entry in a lead's activity timeline.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	LeadID      uuid.UUID      `json:"lead_id"`
	Type        EventType      `json:"type"`
	SourceID    string         `json:"source_id,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}
