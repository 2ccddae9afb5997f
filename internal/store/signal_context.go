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

// SignalContextStore keeps one row per lead. The whole context travels as a
// JSONB payload; version and updated_at are hoisted into columns for queries.
type SignalContextStore struct {
	db *pgxpool.Pool
}

func NewSignalContextStore(db *pgxpool.Pool) *SignalContextStore {
	return &SignalContextStore{db: db}
}

func (s *SignalContextStore) Get(ctx context.Context, leadID uuid.UUID) (*domain.SignalContext, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM signal_contexts WHERE lead_id = $1`,
		leadID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sc := &domain.SignalContext{}
	if err := json.Unmarshal(payload, sc); err != nil {
		return nil, fmt.Errorf("unmarshal signal context: %w", err)
	}
	return sc, nil
}

func (s *SignalContextStore) Upsert(ctx context.Context, sc *domain.SignalContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal signal context: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO signal_contexts (lead_id, version, payload, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (lead_id) DO UPDATE SET
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			updated_at = now()
		 RETURNING updated_at`,
		sc.LeadID, sc.Version, payload,
	).Scan(&sc.UpdatedAt)
}
