package service

import (
	"context"
	"errors"
	"math"

	"github.com/nextmove-ai/nextmove/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrUnknownState  = errors.New("state outside the fixed state space")
	ErrUnknownAction = errors.New("action outside the fixed action space")
	ErrNoAdmissible  = errors.New("admissible action set is empty")
)

// ucbEpsilon keeps the exploration bonus finite for never-tried actions while
// still making it large enough to guarantee each admissible action is
// eventually tried.
const ucbEpsilon = 1e-6

// QTableService owns the Q-table: reads, confidence-bounded selection, and
// the temporal-difference update. Values change only through Update and Seed;
// selection never writes.
type QTableService struct {
	store   domain.QValueStore
	rewards *domain.RewardTable
	logger  *zap.Logger

	alpha float64
	gamma float64
	ucbC  float64
}

func NewQTableService(store domain.QValueStore, rewards *domain.RewardTable, logger *zap.Logger, alpha, gamma, ucbC float64) *QTableService {
	return &QTableService{
		store:   store,
		rewards: rewards,
		logger:  logger,
		alpha:   alpha,
		gamma:   gamma,
		ucbC:    ucbC,
	}
}

// Reward looks up the scalar reward for a stage transition. Unknown pairs
// default to zero and are logged, never failed.
func (s *QTableService) Reward(before, after domain.Stage) float64 {
	r, known := s.rewards.Reward(before, after)
	if !known {
		s.logger.Warn("no reward configured for transition, defaulting to 0",
			zap.String("from", string(before)),
			zap.String("to", string(after)),
		)
	}
	return r
}

// Get returns the entry for a (state, action) pair, a zero-valued default if
// the pair has never been touched.
func (s *QTableService) Get(ctx context.Context, state domain.StateID, action domain.ActionKind) (*domain.QEntry, error) {
	if !state.Valid() {
		return nil, ErrUnknownState
	}
	if !domain.ValidAction(string(action)) {
		return nil, ErrUnknownAction
	}
	return s.store.Get(ctx, state, action)
}

// BestAdmissible scores every admissible action with an upper confidence
// bound and returns the winner plus its exploitation Q-value:
//
//	score(a) = Q(s,a) + C * sqrt(ln(totalVisits+1) / (visits(s,a)+eps))
//
// Ties break toward the lower visit count, then the earlier action in the
// fixed enumeration order, so selection is deterministic for identical
// Q-table contents.
func (s *QTableService) BestAdmissible(ctx context.Context, state domain.StateID, admissible []domain.ActionKind) (domain.ActionKind, float64, error) {
	if !state.Valid() {
		return "", 0, ErrUnknownState
	}
	if len(admissible) == 0 {
		return "", 0, ErrNoAdmissible
	}
	for _, a := range admissible {
		if !domain.ValidAction(string(a)) {
			return "", 0, ErrUnknownAction
		}
	}

	entries, err := s.store.GetByState(ctx, state, admissible)
	if err != nil {
		return "", 0, err
	}

	totalVisits := 0
	for _, a := range admissible {
		totalVisits += entries[a].VisitCount
	}

	var (
		best       domain.ActionKind
		bestQ      float64
		bestScore  = math.Inf(-1)
		bestVisits int
	)
	for _, a := range admissible {
		entry := entries[a]
		bonus := s.ucbC * math.Sqrt(math.Log(float64(totalVisits)+1)/(float64(entry.VisitCount)+ucbEpsilon))
		score := entry.Value + bonus

		better := score > bestScore ||
			(score == bestScore && entry.VisitCount < bestVisits)
		if better {
			best = a
			bestQ = entry.Value
			bestScore = score
			bestVisits = entry.VisitCount
		}
	}
	return best, bestQ, nil
}

// Update performs the Q-learning update for one observed transition:
//
//	Q(s,a) <- Q(s,a) + alpha * (r + gamma * max_a' Q(s',a') - Q(s,a))
//
// The max is taken only over actions admissible in the successor state so a
// stale value for an inadmissible action never leaks into the target.
func (s *QTableService) Update(ctx context.Context, state domain.StateID, action domain.ActionKind, reward float64, stateAfter domain.StateID, admissibleAfter []domain.ActionKind) (*domain.QUpdate, error) {
	if !state.Valid() || !stateAfter.Valid() {
		return nil, ErrUnknownState
	}
	if !domain.ValidAction(string(action)) {
		return nil, ErrUnknownAction
	}
	for _, a := range admissibleAfter {
		if !domain.ValidAction(string(a)) {
			return nil, ErrUnknownAction
		}
	}

	var maxNext float64
	if len(admissibleAfter) > 0 {
		var err error
		maxNext, err = s.store.MaxValue(ctx, stateAfter, admissibleAfter)
		if err != nil {
			return nil, err
		}
	}

	target := reward + s.gamma*maxNext
	upd, err := s.store.ApplyTD(ctx, state, action, reward, target, s.alpha)
	if err != nil {
		return nil, err
	}

	s.logger.Info("q-update",
		zap.String("state", state.String()),
		zap.String("action", string(action)),
		zap.Float64("reward", reward),
		zap.Float64("q_before", upd.Before.Value),
		zap.Float64("q_after", upd.After.Value),
	)
	return upd, nil
}

// Seed bulk-loads prior values. Idempotent per key: seeding overwrites the
// value, it never adds to it.
func (s *QTableService) Seed(ctx context.Context, entries []domain.QEntry) error {
	for _, e := range entries {
		if !e.State.Valid() {
			return ErrUnknownState
		}
		if !domain.ValidAction(string(e.Action)) {
			return ErrUnknownAction
		}
	}
	return s.store.Seed(ctx, entries)
}

// Inspect returns every materialized Q-table row for audit tooling.
func (s *QTableService) Inspect(ctx context.Context) ([]domain.QEntry, error) {
	return s.store.List(ctx)
}
