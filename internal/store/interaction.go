package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

type InteractionStore struct {
	db *pgxpool.Pool
}

func NewInteractionStore(db *pgxpool.Pool) *InteractionStore {
	return &InteractionStore{db: db}
}

func (s *InteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	extractionJSON, err := json.Marshal(i.Extraction)
	if err != nil {
		return fmt.Errorf("marshal extraction: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO interactions (id, lead_id, channel, direction, status, extraction)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		i.ID, i.LeadID, i.Channel, i.Direction, i.Status, extractionJSON,
	).Scan(&i.CreatedAt)
}

func (s *InteractionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, lead_id, channel, direction, status, extraction, created_at
		 FROM interactions WHERE lead_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var i domain.Interaction
		var extractionJSON []byte
		if err := rows.Scan(&i.ID, &i.LeadID, &i.Channel, &i.Direction, &i.Status, &extractionJSON, &i.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(extractionJSON, &i.Extraction); err != nil {
			return nil, fmt.Errorf("unmarshal extraction: %w", err)
		}
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}
