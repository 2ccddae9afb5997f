package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

// TransitionStore is append-only. There is deliberately no update or delete.
type TransitionStore struct {
	db *pgxpool.Pool
}

func NewTransitionStore(db *pgxpool.Pool) *TransitionStore {
	return &TransitionStore{db: db}
}

func (s *TransitionStore) Create(ctx context.Context, t *domain.StateTransition) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO state_transitions (id, lead_id, decision_id, interaction_id,
			stage_before, bucket_before, action_taken, stage_after, bucket_after,
			reward, q_value_before, q_value_after)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		t.ID, t.LeadID, t.DecisionID, t.InteractionID,
		t.StateBefore.Stage, t.StateBefore.Bucket, t.ActionTaken, t.StateAfter.Stage, t.StateAfter.Bucket,
		t.Reward, t.QValueBefore, t.QValueAfter,
	).Scan(&t.CreatedAt)
}

func (s *TransitionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.StateTransition, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, lead_id, decision_id, interaction_id,
			stage_before, bucket_before, action_taken, stage_after, bucket_after,
			reward, q_value_before, q_value_after, created_at
		 FROM state_transitions WHERE lead_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []domain.StateTransition
	for rows.Next() {
		var t domain.StateTransition
		if err := rows.Scan(&t.ID, &t.LeadID, &t.DecisionID, &t.InteractionID,
			&t.StateBefore.Stage, &t.StateBefore.Bucket, &t.ActionTaken, &t.StateAfter.Stage, &t.StateAfter.Bucket,
			&t.Reward, &t.QValueBefore, &t.QValueAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}
