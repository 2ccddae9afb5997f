package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/store"
	"go.uber.org/zap"
)

// SignalService accumulates extraction output into the per-lead signal
// context. Merging is append-or-overwrite only; a context is never deleted.
type SignalService struct {
	contexts domain.SignalContextStore
	logger   *zap.Logger
}

func NewSignalService(contexts domain.SignalContextStore, logger *zap.Logger) *SignalService {
	return &SignalService{contexts: contexts, logger: logger}
}

// Get returns the lead's accumulated context, or a fresh neutral one if no
// extraction has ever produced signals for this lead.
func (s *SignalService) Get(ctx context.Context, leadID uuid.UUID) (*domain.SignalContext, error) {
	sc, err := s.contexts.Get(ctx, leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewSignalContext(leadID), nil
		}
		return nil, err
	}
	return sc, nil
}

// MergeInteraction folds one interaction's extraction into the accumulated
// context and persists the new version.
func (s *SignalService) MergeInteraction(ctx context.Context, leadID uuid.UUID, status domain.InteractionStatus, ext domain.Extraction) (*domain.SignalContext, error) {
	sc, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}

	sc.Merge(status, ext)

	if err := s.contexts.Upsert(ctx, sc); err != nil {
		return nil, err
	}

	s.logger.Debug("signal context merged",
		zap.String("lead_id", leadID.String()),
		zap.Int("version", sc.Version),
		zap.String("financial_concern", string(sc.Financial.ConcernLevel)),
		zap.Int("objections", len(sc.Objections)),
	)
	return sc, nil
}
