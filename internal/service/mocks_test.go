package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/store"
)

type mockLeadStore struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*domain.Lead
}

func newMockLeadStore() *mockLeadStore {
	return &mockLeadStore{leads: make(map[uuid.UUID]*domain.Lead)}
}

func (m *mockLeadStore) Create(ctx context.Context, l *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
		l.UpdatedAt = l.CreatedAt
	}
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *mockLeadStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLeadStore) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return store.ErrNotFound
	}
	l.Stage = stage
	return nil
}

func (m *mockLeadStore) RecordAttempt(ctx context.Context, id uuid.UUID, channel domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return store.ErrNotFound
	}
	l.TotalInteractions++
	switch channel {
	case domain.ChannelVoice:
		l.VoiceAttempts++
	case domain.ChannelSMS:
		l.SMSAttempts++
	case domain.ChannelEmail:
		l.EmailAttempts++
	}
	return nil
}

type mockInteractionStore struct {
	mu           sync.Mutex
	interactions []domain.Interaction
}

func newMockInteractionStore() *mockInteractionStore {
	return &mockInteractionStore{}
}

func (m *mockInteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, *i)
	return nil
}

func (m *mockInteractionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Interaction
	for _, i := range m.interactions {
		if i.LeadID == leadID {
			out = append(out, i)
		}
	}
	return out, nil
}

type mockContextStore struct {
	mu       sync.Mutex
	contexts map[uuid.UUID]*domain.SignalContext
}

func newMockContextStore() *mockContextStore {
	return &mockContextStore{contexts: make(map[uuid.UUID]*domain.SignalContext)}
}

func (m *mockContextStore) Get(ctx context.Context, leadID uuid.UUID) (*domain.SignalContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.contexts[leadID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (m *mockContextStore) Upsert(ctx context.Context, sc *domain.SignalContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc.UpdatedAt = time.Now()
	cp := *sc
	m.contexts[sc.LeadID] = &cp
	return nil
}

type qKey struct {
	state  domain.StateID
	action domain.ActionKind
}

type mockQStore struct {
	mu      sync.Mutex
	entries map[qKey]domain.QEntry
}

func newMockQStore() *mockQStore {
	return &mockQStore{entries: make(map[qKey]domain.QEntry)}
}

func (m *mockQStore) get(state domain.StateID, action domain.ActionKind) domain.QEntry {
	if e, ok := m.entries[qKey{state, action}]; ok {
		return e
	}
	return domain.QEntry{State: state, Action: action}
}

func (m *mockQStore) Get(ctx context.Context, state domain.StateID, action domain.ActionKind) (*domain.QEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(state, action)
	return &e, nil
}

func (m *mockQStore) GetByState(ctx context.Context, state domain.StateID, actions []domain.ActionKind) (map[domain.ActionKind]domain.QEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.ActionKind]domain.QEntry, len(actions))
	for _, a := range actions {
		out[a] = m.get(state, a)
	}
	return out, nil
}

func (m *mockQStore) MaxValue(ctx context.Context, state domain.StateID, actions []domain.ActionKind) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(actions) == 0 {
		return 0, nil
	}
	max := m.get(state, actions[0]).Value
	for _, a := range actions[1:] {
		if v := m.get(state, a).Value; v > max {
			max = v
		}
	}
	return max, nil
}

func (m *mockQStore) ApplyTD(ctx context.Context, state domain.StateID, action domain.ActionKind, reward, target, alpha float64) (*domain.QUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.get(state, action)
	after := before
	after.Value = before.Value + alpha*(target-before.Value)
	after.VisitCount = before.VisitCount + 1
	after.TotalReward = before.TotalReward + reward
	after.UpdatedAt = time.Now()
	m.entries[qKey{state, action}] = after
	return &domain.QUpdate{Before: before, After: after}, nil
}

func (m *mockQStore) Seed(ctx context.Context, entries []domain.QEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		existing := m.get(e.State, e.Action)
		existing.Value = e.Value
		existing.UpdatedAt = time.Now()
		m.entries[qKey{e.State, e.Action}] = existing
	}
	return nil
}

func (m *mockQStore) List(ctx context.Context) ([]domain.QEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.QEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

type mockDecisionStore struct {
	mu        sync.Mutex
	decisions []domain.Decision
}

func newMockDecisionStore() *mockDecisionStore {
	return &mockDecisionStore{}
}

func (m *mockDecisionStore) Create(ctx context.Context, d *domain.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m.decisions = append(m.decisions, *d)
	return nil
}

func (m *mockDecisionStore) GetCurrent(ctx context.Context, leadID uuid.UUID) (*domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.decisions) - 1; i >= 0; i-- {
		if m.decisions[i].LeadID == leadID && m.decisions[i].IsCurrent {
			cp := m.decisions[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockDecisionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Decision
	for i := len(m.decisions) - 1; i >= 0; i-- {
		if m.decisions[i].LeadID == leadID {
			out = append(out, m.decisions[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockDecisionStore) SupersedeCurrent(ctx context.Context, leadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.decisions {
		if m.decisions[i].LeadID == leadID && m.decisions[i].IsCurrent {
			m.decisions[i].IsCurrent = false
			m.decisions[i].Status = domain.DecisionSuperseded
		}
	}
	return nil
}

type mockTransitionStore struct {
	mu          sync.Mutex
	transitions []domain.StateTransition
}

func newMockTransitionStore() *mockTransitionStore {
	return &mockTransitionStore{}
}

func (m *mockTransitionStore) Create(ctx context.Context, t *domain.StateTransition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, *t)
	return nil
}

func (m *mockTransitionStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.StateTransition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StateTransition
	for _, t := range m.transitions {
		if t.LeadID == leadID {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockEventStore struct {
	mu     sync.Mutex
	events []domain.Event
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{}
}

func (m *mockEventStore) Create(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *mockEventStore) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, e := range m.events {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventStore) countByType(typ domain.EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
