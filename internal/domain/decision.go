package domain

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type DecisionStatus string

const (
	DecisionPending    DecisionStatus = "pending"
	DecisionSuperseded DecisionStatus = "superseded"
)

// Directive is one tactical instruction inside a brief, tagged with the
// signal that produced it so operators can trace why it is there.
type Directive struct {
	Point    string `json:"point"`
	Priority int    `json:"priority"`
	Signal   string `json:"signal,omitempty"`
}

// Brief is the tactical content package for a chosen action: what to say,
// how to say it, what to prepare, and what to avoid.
type Brief struct {
	ContentDirectives []Directive `json:"content_directives"`
	OverallTone       string      `json:"overall_tone"`
	InfoToPrepare     []string    `json:"info_to_prepare"`
	ThingsToAvoid     []string    `json:"things_to_avoid"`
	TimingRationale   string      `json:"timing_rationale"`
	MessageDraft      string      `json:"message_draft,omitempty"`
}

// PolicyInputs snapshots everything the selector evaluated, so every
// decision is reproducible from its own record.
type PolicyInputs struct {
	Stage             Stage             `json:"stage"`
	Bucket            ContextBucket     `json:"bucket"`
	TotalInteractions int               `json:"total_interactions"`
	VoiceAttempts     int               `json:"voice_attempts"`
	SMSAttempts       int               `json:"sms_attempts"`
	EmailAttempts     int               `json:"email_attempts"`
	LastIntent        Intent            `json:"last_intent,omitempty"`
	LastSentiment     Sentiment         `json:"last_sentiment,omitempty"`
	LastStatus        InteractionStatus `json:"last_status,omitempty"`
	HasPhone          bool              `json:"has_phone"`
	HasEmail          bool              `json:"has_email"`
	AdmissibleActions []ActionKind      `json:"admissible_actions"`
	OverrideApplied   bool              `json:"override_applied"`
}

// Decision is the persisted output of one policy evaluation. One current
// decision exists per lead; superseded decisions are retained as history.
type Decision struct {
	ID            uuid.UUID      `json:"id"`
	LeadID        uuid.UUID      `json:"lead_id"`
	InteractionID uuid.UUID      `json:"interaction_id"`
	Action        ActionKind     `json:"action"`
	Channel       Channel        `json:"channel"`
	Priority      Priority       `json:"priority"`
	State         StateID        `json:"state"`
	QValue        float64        `json:"q_value"`
	Brief         Brief          `json:"brief"`
	PolicyInputs  PolicyInputs   `json:"policy_inputs"`
	SignalContext *SignalContext `json:"signal_context,omitempty"`
	ScheduledFor  *time.Time     `json:"scheduled_for,omitempty"`
	IsCurrent     bool           `json:"is_current"`
	Status        DecisionStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}
