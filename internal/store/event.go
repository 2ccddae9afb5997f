package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Create(ctx context.Context, e *domain.Event) error {
	var payloadJSON []byte
	if e.Payload != nil {
		var err error
		payloadJSON, err = json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO events (id, lead_id, type, source_id, payload, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		e.ID, e.LeadID, e.Type, e.SourceID, payloadJSON, e.Description,
	).Scan(&e.CreatedAt)
}

func (s *EventStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, lead_id, type, source_id, payload, description, created_at
		 FROM events WHERE lead_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Type, &e.SourceID, &payloadJSON, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
