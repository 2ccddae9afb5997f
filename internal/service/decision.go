package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"go.uber.org/zap"
)

// DecisionService maintains the one-current-decision-per-lead invariant.
// Recording a new decision supersedes the old one; history is append-only.
type DecisionService struct {
	decisions domain.DecisionStore
	logger    *zap.Logger
}

func NewDecisionService(decisions domain.DecisionStore, logger *zap.Logger) *DecisionService {
	return &DecisionService{decisions: decisions, logger: logger}
}

// Record supersedes the lead's current decision and persists the new one as
// current. Callers must hold the lead's lock.
func (s *DecisionService) Record(ctx context.Context, d *domain.Decision) error {
	if err := s.decisions.SupersedeCurrent(ctx, d.LeadID); err != nil {
		return err
	}

	d.IsCurrent = true
	d.Status = domain.DecisionPending
	if err := s.decisions.Create(ctx, d); err != nil {
		return err
	}

	s.logger.Info("decision recorded",
		zap.String("lead_id", d.LeadID.String()),
		zap.String("decision_id", d.ID.String()),
		zap.String("action", string(d.Action)),
		zap.String("state", d.State.String()),
		zap.String("priority", string(d.Priority)),
	)
	return nil
}

// Current returns the lead's one current decision.
func (s *DecisionService) Current(ctx context.Context, leadID uuid.UUID) (*domain.Decision, error) {
	return s.decisions.GetCurrent(ctx, leadID)
}

// History returns the lead's decisions, newest first.
func (s *DecisionService) History(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Decision, error) {
	return s.decisions.ListByLead(ctx, leadID, limit)
}
