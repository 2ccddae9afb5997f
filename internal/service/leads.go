package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrLeadNameRequired = errors.New("lead first name is required")
	ErrNoContactInfo    = errors.New("lead needs at least one of phone or email")
	ErrInvalidStage     = errors.New("unknown lifecycle stage")
)

// LeadService handles lead registration and read access to a lead's record,
// interactions, and activity timeline.
type LeadService struct {
	leads        domain.LeadStore
	interactions domain.InteractionStore
	events       domain.EventStore
	logger       *zap.Logger

	now func() time.Time
}

func NewLeadService(leads domain.LeadStore, interactions domain.InteractionStore, events domain.EventStore, logger *zap.Logger) *LeadService {
	return &LeadService{
		leads:        leads,
		interactions: interactions,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateLeadInput carries the registration payload. Stage is optional and
// defaults to new.
type CreateLeadInput struct {
	FirstName        string
	LastName         string
	Phone            string
	Email            string
	PreferredChannel domain.Channel
	Stage            domain.Stage
	CampaignGoal     string
}

func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (*domain.Lead, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, ErrLeadNameRequired
	}
	if in.Phone == "" && in.Email == "" {
		return nil, ErrNoContactInfo
	}
	stage := in.Stage
	if stage == "" {
		stage = domain.StageNew
	}
	if !domain.ValidStage(string(stage)) {
		return nil, ErrInvalidStage
	}

	now := s.now()
	lead := &domain.Lead{
		ID:               uuid.New(),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Phone:            in.Phone,
		Email:            in.Email,
		PreferredChannel: in.PreferredChannel,
		Stage:            stage,
		CampaignGoal:     in.CampaignGoal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("stage", string(lead.Stage)),
	)
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

func (s *LeadService) Interactions(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error) {
	return s.interactions.ListByLead(ctx, leadID, limit)
}

func (s *LeadService) Events(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Event, error) {
	return s.events.ListByLead(ctx, leadID, limit)
}
