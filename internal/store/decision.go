package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

type DecisionStore struct {
	db *pgxpool.Pool
}

func NewDecisionStore(db *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{db: db}
}

func (s *DecisionStore) Create(ctx context.Context, d *domain.Decision) error {
	briefJSON, err := json.Marshal(d.Brief)
	if err != nil {
		return fmt.Errorf("marshal brief: %w", err)
	}
	inputsJSON, err := json.Marshal(d.PolicyInputs)
	if err != nil {
		return fmt.Errorf("marshal policy inputs: %w", err)
	}
	var contextJSON []byte
	if d.SignalContext != nil {
		contextJSON, err = json.Marshal(d.SignalContext)
		if err != nil {
			return fmt.Errorf("marshal signal context: %w", err)
		}
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO decisions (id, lead_id, interaction_id, action, channel, priority,
			stage, bucket, q_value, brief, policy_inputs, signal_context,
			scheduled_for, is_current, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING created_at`,
		d.ID, d.LeadID, d.InteractionID, d.Action, d.Channel, d.Priority,
		d.State.Stage, d.State.Bucket, d.QValue, briefJSON, inputsJSON, contextJSON,
		d.ScheduledFor, d.IsCurrent, d.Status,
	).Scan(&d.CreatedAt)
}

func (s *DecisionStore) GetCurrent(ctx context.Context, leadID uuid.UUID) (*domain.Decision, error) {
	row := s.db.QueryRow(ctx,
		decisionColumns+` FROM decisions WHERE lead_id = $1 AND is_current = true`,
		leadID,
	)
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *DecisionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		decisionColumns+` FROM decisions WHERE lead_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, rows.Err()
}

func (s *DecisionStore) SupersedeCurrent(ctx context.Context, leadID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE decisions SET is_current = false, status = $2
		 WHERE lead_id = $1 AND is_current = true`,
		leadID, domain.DecisionSuperseded,
	)
	return err
}

const decisionColumns = `SELECT id, lead_id, interaction_id, action, channel, priority,
	stage, bucket, q_value, brief, policy_inputs, signal_context,
	scheduled_for, is_current, status, created_at`

func scanDecision(row pgx.Row) (*domain.Decision, error) {
	d := &domain.Decision{}
	var briefJSON, inputsJSON, contextJSON []byte
	err := row.Scan(
		&d.ID, &d.LeadID, &d.InteractionID, &d.Action, &d.Channel, &d.Priority,
		&d.State.Stage, &d.State.Bucket, &d.QValue, &briefJSON, &inputsJSON, &contextJSON,
		&d.ScheduledFor, &d.IsCurrent, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(briefJSON, &d.Brief); err != nil {
		return nil, fmt.Errorf("unmarshal brief: %w", err)
	}
	if err := json.Unmarshal(inputsJSON, &d.PolicyInputs); err != nil {
		return nil, fmt.Errorf("unmarshal policy inputs: %w", err)
	}
	if len(contextJSON) > 0 {
		d.SignalContext = &domain.SignalContext{}
		if err := json.Unmarshal(contextJSON, d.SignalContext); err != nil {
			return nil, fmt.Errorf("unmarshal signal context: %w", err)
		}
	}
	return d, nil
}
