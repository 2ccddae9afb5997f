package service

import (
	"context"
	"math"
	"testing"

	"github.com/nextmove-ai/nextmove/internal/domain"
	"go.uber.org/zap"
)

func newTestQTable() (*QTableService, *mockQStore) {
	qs := newMockQStore()
	svc := NewQTableService(qs, domain.DefaultRewardTable(), zap.NewNop(), 0.1, 0.9, 1.0)
	return svc, qs
}

func TestQTableService_Update_Arithmetic(t *testing.T) {
	svc, qs := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageContacted, Bucket: domain.BucketNeutral}
	after := domain.StateID{Stage: domain.StageInterested, Bucket: domain.BucketNeutral}

	// Fresh table: maxNext is 0, target = reward, Q moves alpha of the way.
	upd, err := svc.Update(ctx, state, domain.ActionWarmFollowUp, 0.4, after, []domain.ActionKind{domain.ActionWait})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(upd.After.Value-0.04) > 1e-9 {
		t.Fatalf("expected 0.04, got %v", upd.After.Value)
	}
	if upd.After.VisitCount != 1 {
		t.Fatalf("expected visit count 1, got %d", upd.After.VisitCount)
	}
	if math.Abs(upd.After.TotalReward-0.4) > 1e-9 {
		t.Fatalf("expected total reward 0.4, got %v", upd.After.TotalReward)
	}

	// Untouched keys stay untouched.
	other, _ := qs.Get(ctx, state, domain.ActionGentleNudge)
	if other.Value != 0 || other.VisitCount != 0 {
		t.Fatalf("update leaked into other key: %+v", other)
	}
}

func TestQTableService_Update_SuccessorMaskedByAdmissibility(t *testing.T) {
	svc, qs := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageContacted, Bucket: domain.BucketNeutral}
	after := domain.StateID{Stage: domain.StageInterested, Bucket: domain.BucketNeutral}

	// wait carries a high value in the successor but is not admissible there.
	_ = qs.Seed(ctx, []domain.QEntry{
		{State: after, Action: domain.ActionWait, Value: 0.9},
		{State: after, Action: domain.ActionGentleNudge, Value: 0.2},
	})

	upd, err := svc.Update(ctx, state, domain.ActionWarmFollowUp, 0.4, after, []domain.ActionKind{domain.ActionGentleNudge})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// target = 0.4 + 0.9*0.2 = 0.58, Q = 0 + 0.1*0.58
	if math.Abs(upd.After.Value-0.058) > 1e-9 {
		t.Fatalf("inadmissible successor value leaked into target: %v", upd.After.Value)
	}
}

func TestQTableService_Update_EmptySuccessorSet(t *testing.T) {
	svc, _ := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageContacted, Bucket: domain.BucketNeutral}
	after := domain.StateID{Stage: domain.StageDeclined, Bucket: domain.BucketNeutral}

	upd, err := svc.Update(ctx, state, domain.ActionWarmFollowUp, -1.0, after, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// target = -1.0 with no future term.
	if math.Abs(upd.After.Value-(-0.1)) > 1e-9 {
		t.Fatalf("expected -0.1, got %v", upd.After.Value)
	}
}

func TestQTableService_Update_RejectsUnknownEnums(t *testing.T) {
	svc, _ := newTestQTable()
	ctx := context.Background()

	good := domain.StateID{Stage: domain.StageNew, Bucket: domain.BucketNeutral}
	bad := domain.StateID{Stage: "bogus", Bucket: domain.BucketNeutral}

	if _, err := svc.Update(ctx, bad, domain.ActionWait, 0, good, nil); err != ErrUnknownState {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
	if _, err := svc.Update(ctx, good, "bogus", 0, good, nil); err != ErrUnknownAction {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := svc.Update(ctx, good, domain.ActionWait, 0, good, []domain.ActionKind{"bogus"}); err != ErrUnknownAction {
		t.Fatalf("expected ErrUnknownAction for successor set, got %v", err)
	}
}

func TestQTableService_Seed_Idempotent(t *testing.T) {
	svc, qs := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageNew, Bucket: domain.BucketNeutral}
	entries := []domain.QEntry{{State: state, Action: domain.ActionWarmFollowUp, Value: 0.5}}

	if err := svc.Seed(ctx, entries); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Seed(ctx, entries); err != nil {
		t.Fatalf("expected no error on re-seed, got %v", err)
	}

	e, _ := qs.Get(ctx, state, domain.ActionWarmFollowUp)
	if e.Value != 0.5 {
		t.Fatalf("expected 0.5 after double seed, got %v", e.Value)
	}
	if e.VisitCount != 0 {
		t.Fatalf("seed must not touch visit count, got %d", e.VisitCount)
	}
}

func TestQTableService_Seed_RejectsUnknownKeys(t *testing.T) {
	svc, _ := newTestQTable()
	ctx := context.Background()

	err := svc.Seed(ctx, []domain.QEntry{{State: domain.StateID{Stage: "bogus", Bucket: domain.BucketNeutral}, Action: domain.ActionWait}})
	if err != ErrUnknownState {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestQTableService_BestAdmissible_ColdStartDeterministic(t *testing.T) {
	svc, _ := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageNew, Bucket: domain.BucketNeutral}
	admissible := []domain.ActionKind{domain.ActionWarmFollowUp, domain.ActionInfoSend, domain.ActionGentleNudge, domain.ActionWait}

	// All scores tie at zero on a cold table; enumeration order breaks it.
	for i := 0; i < 5; i++ {
		action, q, err := svc.BestAdmissible(ctx, state, admissible)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if action != domain.ActionWarmFollowUp {
			t.Fatalf("expected warm_follow_up on cold start, got %s", action)
		}
		if q != 0 {
			t.Fatalf("expected zero q on cold start, got %v", q)
		}
	}
}

func TestQTableService_BestAdmissible_ExploitsSeededValues(t *testing.T) {
	svc, qs := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageInterested, Bucket: domain.BucketSchedulingIntent}
	_ = qs.Seed(ctx, []domain.QEntry{
		{State: state, Action: domain.ActionSchedulingPush, Value: 0.9},
		{State: state, Action: domain.ActionWarmFollowUp, Value: 0.2},
	})

	action, q, err := svc.BestAdmissible(ctx, state, []domain.ActionKind{domain.ActionWarmFollowUp, domain.ActionSchedulingPush})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if action != domain.ActionSchedulingPush {
		t.Fatalf("expected scheduling_push, got %s", action)
	}
	if q != 0.9 {
		t.Fatalf("expected exploitation value 0.9, got %v", q)
	}
}

func TestQTableService_BestAdmissible_ExplorationBonusForUntried(t *testing.T) {
	svc, qs := newTestQTable()
	ctx := context.Background()

	state := domain.StateID{Stage: domain.StageContacted, Bucket: domain.BucketNeutral}
	after := domain.StateID{Stage: domain.StageInterested, Bucket: domain.BucketNeutral}

	// Give warm_follow_up real visits with a decent value; gentle_nudge has
	// never been tried.
	for i := 0; i < 5; i++ {
		_, _ = svc.Update(ctx, state, domain.ActionWarmFollowUp, 0.4, after, nil)
	}
	e, _ := qs.Get(ctx, state, domain.ActionWarmFollowUp)
	if e.VisitCount != 5 {
		t.Fatalf("setup: expected 5 visits, got %d", e.VisitCount)
	}

	action, _, err := svc.BestAdmissible(ctx, state, []domain.ActionKind{domain.ActionWarmFollowUp, domain.ActionGentleNudge})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// The near-infinite bonus on an untried action dominates.
	if action != domain.ActionGentleNudge {
		t.Fatalf("expected untried gentle_nudge to win, got %s", action)
	}
}

func TestQTableService_BestAdmissible_EmptySet(t *testing.T) {
	svc, _ := newTestQTable()

	_, _, err := svc.BestAdmissible(context.Background(), domain.StateID{Stage: domain.StageNew, Bucket: domain.BucketNeutral}, nil)
	if err != ErrNoAdmissible {
		t.Fatalf("expected ErrNoAdmissible, got %v", err)
	}
}

func TestQTableService_Reward_UnknownPairZero(t *testing.T) {
	svc, _ := newTestQTable()

	if r := svc.Reward(domain.StageEnrolled, domain.StageContacted); r != 0 {
		t.Fatalf("expected 0 for unknown pair, got %v", r)
	}
	if r := svc.Reward(domain.StageNew, domain.StageContacted); r != 0.1 {
		t.Fatalf("expected 0.1, got %v", r)
	}
}
