package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/domain"
)

type LeadStore struct {
	db *pgxpool.Pool
}

func NewLeadStore(db *pgxpool.Pool) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) Create(ctx context.Context, l *domain.Lead) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO leads (id, first_name, last_name, phone, email, preferred_channel, stage, campaign_goal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.PreferredChannel, l.Stage, l.CampaignGoal,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (s *LeadStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := s.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, phone, email, preferred_channel, stage, campaign_goal,
			total_interactions, voice_attempts, sms_attempts, email_attempts, created_at, updated_at
		 FROM leads WHERE id = $1`,
		id,
	).Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Phone, &l.Email, &l.PreferredChannel, &l.Stage, &l.CampaignGoal,
		&l.TotalInteractions, &l.VoiceAttempts, &l.SMSAttempts, &l.EmailAttempts, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *LeadStore) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE leads SET stage = $2, updated_at = now() WHERE id = $1`,
		id, stage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LeadStore) RecordAttempt(ctx context.Context, id uuid.UUID, channel domain.Channel) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE leads SET
			total_interactions = total_interactions + 1,
			voice_attempts = voice_attempts + CASE WHEN $2 = 'voice' THEN 1 ELSE 0 END,
			sms_attempts   = sms_attempts   + CASE WHEN $2 = 'sms'   THEN 1 ELSE 0 END,
			email_attempts = email_attempts + CASE WHEN $2 = 'email' THEN 1 ELSE 0 END,
			updated_at = now()
		 WHERE id = $1`,
		id, string(channel),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
