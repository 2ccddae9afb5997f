package domain

import (
	"time"

	"github.com/google/uuid"
)

// StateTransition is the immutable audit record written exactly once per
// Q-update. Never mutated or deleted: it is the ground truth for replaying
// and analyzing the policy offline.
type StateTransition struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"lead_id"`
	DecisionID    uuid.UUID  `json:"decision_id"`
	InteractionID uuid.UUID  `json:"interaction_id"`
	StateBefore   StateID    `json:"state_before"`
	ActionTaken   ActionKind `json:"action_taken"`
	StateAfter    StateID    `json:"state_after"`
	Reward        float64    `json:"reward"`
	QValueBefore  float64    `json:"q_value_before"`
	QValueAfter   float64    `json:"q_value_after"`
	CreatedAt     time.Time  `json:"created_at"`
}
