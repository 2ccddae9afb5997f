package domain

import (
	"context"

	"github.com/google/uuid"
)

type LeadStore interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage Stage) error
	// RecordAttempt bumps the total interaction counter and the per-channel
	// attempt counter atomically.
	RecordAttempt(ctx context.Context, id uuid.UUID, channel Channel) error
}

type InteractionStore interface {
	Create(ctx context.Context, i *Interaction) error
	ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]Interaction, error)
}

type SignalContextStore interface {
	Get(ctx context.Context, leadID uuid.UUID) (*SignalContext, error)
	Upsert(ctx context.Context, sc *SignalContext) error
}

// QValueStore is the single shared Q-table behind a narrow interface so the
// per-key update discipline lives in one place. Reads return seeded defaults
// for untouched pairs; ApplyTD must serialize read-modify-write per
// (state, action) key.
type QValueStore interface {
	Get(ctx context.Context, state StateID, action ActionKind) (*QEntry, error)
	GetByState(ctx context.Context, state StateID, actions []ActionKind) (map[ActionKind]QEntry, error)
	MaxValue(ctx context.Context, state StateID, actions []ActionKind) (float64, error)
	// ApplyTD moves the entry's value toward target by the learning rate and
	// increments the visit count, atomically per key.
	ApplyTD(ctx context.Context, state StateID, action ActionKind, reward, target, alpha float64) (*QUpdate, error)
	// Seed overwrites values for the given entries, idempotent per key.
	Seed(ctx context.Context, entries []QEntry) error
	List(ctx context.Context) ([]QEntry, error)
}

type DecisionStore interface {
	Create(ctx context.Context, d *Decision) error
	GetCurrent(ctx context.Context, leadID uuid.UUID) (*Decision, error)
	ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]Decision, error)
	// SupersedeCurrent marks the lead's current decision as superseded and
	// non-current. Superseded decisions are never deleted.
	SupersedeCurrent(ctx context.Context, leadID uuid.UUID) error
}

type TransitionStore interface {
	Create(ctx context.Context, t *StateTransition) error
	ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]StateTransition, error)
}

type EventStore interface {
	Create(ctx context.Context, e *Event) error
	ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]Event, error)
}
