package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

// QValueStore materializes Q-table rows lazily: untouched (state, action)
// pairs read as zero-valued defaults and only get a row on first update or
// seed. ApplyTD holds a row lock across its read-modify-write so concurrent
// updates to the same key serialize.
type QValueStore struct {
	db *pgxpool.Pool
}

func NewQValueStore(db *pgxpool.Pool) *QValueStore {
	return &QValueStore{db: db}
}

func (s *QValueStore) Get(ctx context.Context, state domain.StateID, action domain.ActionKind) (*domain.QEntry, error) {
	e := &domain.QEntry{State: state, Action: action}
	err := s.db.QueryRow(ctx,
		`SELECT value, visit_count, total_reward, updated_at
		 FROM q_values WHERE stage = $1 AND bucket = $2 AND action = $3`,
		state.Stage, state.Bucket, action,
	).Scan(&e.Value, &e.VisitCount, &e.TotalReward, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, nil
		}
		return nil, err
	}
	return e, nil
}

func (s *QValueStore) GetByState(ctx context.Context, state domain.StateID, actions []domain.ActionKind) (map[domain.ActionKind]domain.QEntry, error) {
	entries := make(map[domain.ActionKind]domain.QEntry, len(actions))
	for _, a := range actions {
		entries[a] = domain.QEntry{State: state, Action: a}
	}

	rows, err := s.db.Query(ctx,
		`SELECT action, value, visit_count, total_reward, updated_at
		 FROM q_values WHERE stage = $1 AND bucket = $2 AND action = ANY($3)`,
		state.Stage, state.Bucket, actionStrings(actions),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e := domain.QEntry{State: state}
		if err := rows.Scan(&e.Action, &e.Value, &e.VisitCount, &e.TotalReward, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries[e.Action] = e
	}
	return entries, rows.Err()
}

func (s *QValueStore) MaxValue(ctx context.Context, state domain.StateID, actions []domain.ActionKind) (float64, error) {
	// COALESCE to zero: an unmaterialized successor row reads as the default.
	var max float64
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(value), 0)
		 FROM q_values WHERE stage = $1 AND bucket = $2 AND action = ANY($3)`,
		state.Stage, state.Bucket, actionStrings(actions),
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	// Defaults also participate when rows exist but are all negative.
	if max < 0 && len(actions) > 0 {
		var materialized int
		if err := s.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM q_values WHERE stage = $1 AND bucket = $2 AND action = ANY($3)`,
			state.Stage, state.Bucket, actionStrings(actions),
		).Scan(&materialized); err != nil {
			return 0, err
		}
		if materialized < len(actions) {
			return 0, nil
		}
	}
	return max, nil
}

func (s *QValueStore) ApplyTD(ctx context.Context, state domain.StateID, action domain.ActionKind, reward, target, alpha float64) (*domain.QUpdate, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Materialize the row first so the FOR UPDATE lock always has something
	// to hold; two first-touch updates to the same key then serialize.
	if _, err := tx.Exec(ctx,
		`INSERT INTO q_values (stage, bucket, action) VALUES ($1, $2, $3)
		 ON CONFLICT (stage, bucket, action) DO NOTHING`,
		state.Stage, state.Bucket, action,
	); err != nil {
		return nil, err
	}

	before := domain.QEntry{State: state, Action: action}
	if err := tx.QueryRow(ctx,
		`SELECT value, visit_count, total_reward, updated_at
		 FROM q_values WHERE stage = $1 AND bucket = $2 AND action = $3
		 FOR UPDATE`,
		state.Stage, state.Bucket, action,
	).Scan(&before.Value, &before.VisitCount, &before.TotalReward, &before.UpdatedAt); err != nil {
		return nil, err
	}

	after := domain.QEntry{
		State:       state,
		Action:      action,
		Value:       before.Value + alpha*(target-before.Value),
		VisitCount:  before.VisitCount + 1,
		TotalReward: before.TotalReward + reward,
	}
	if err := tx.QueryRow(ctx,
		`UPDATE q_values SET value = $4, visit_count = $5, total_reward = $6, updated_at = now()
		 WHERE stage = $1 AND bucket = $2 AND action = $3
		 RETURNING updated_at`,
		state.Stage, state.Bucket, action,
		after.Value, after.VisitCount, after.TotalReward,
	).Scan(&after.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.QUpdate{Before: before, After: after}, nil
}

func (s *QValueStore) Seed(ctx context.Context, entries []domain.QEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		// Seeding sets the value outright; visit counts and accumulated
		// reward from real experience are preserved.
		batch.Queue(
			`INSERT INTO q_values (stage, bucket, action, value)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (stage, bucket, action) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = now()`,
			e.State.Stage, e.State.Bucket, e.Action, e.Value,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *QValueStore) List(ctx context.Context) ([]domain.QEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT stage, bucket, action, value, visit_count, total_reward, updated_at
		 FROM q_values
		 ORDER BY stage, bucket, action`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.QEntry
	for rows.Next() {
		var e domain.QEntry
		if err := rows.Scan(&e.State.Stage, &e.State.Bucket, &e.Action, &e.Value, &e.VisitCount, &e.TotalReward, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func actionStrings(actions []domain.ActionKind) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}
