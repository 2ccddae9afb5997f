package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestSignalContext_Merge_ConcernNeverDecreases(t *testing.T) {
	sc := NewSignalContext(uuid.New())

	sc.Merge(InteractionAnswered, Extraction{
		Financial: &FinancialSignals{ConcernLevel: ConcernHigh},
	})
	if sc.Financial.ConcernLevel != ConcernHigh {
		t.Fatalf("expected high, got %s", sc.Financial.ConcernLevel)
	}

	sc.Merge(InteractionAnswered, Extraction{
		Financial: &FinancialSignals{ConcernLevel: ConcernLow},
	})
	if sc.Financial.ConcernLevel != ConcernHigh {
		t.Fatalf("concern level decreased to %s", sc.Financial.ConcernLevel)
	}
}

func TestSignalContext_Merge_NilDimensionsUntouched(t *testing.T) {
	sc := NewSignalContext(uuid.New())
	sc.Merge(InteractionAnswered, Extraction{
		Financial: &FinancialSignals{ConcernLevel: ConcernModerate, Mentions: []string{"tuition"}},
		Family:    &FamilyContext{Siblings: []string{"Leo"}},
	})

	sc.Merge(InteractionAnswered, Extraction{Intent: IntentConsidering})

	if sc.Financial.ConcernLevel != ConcernModerate {
		t.Fatalf("financial reset: %s", sc.Financial.ConcernLevel)
	}
	if !sc.HasSiblings() {
		t.Fatal("family context lost on merge with nil family")
	}
	if sc.Version != 2 {
		t.Fatalf("expected version 2, got %d", sc.Version)
	}
}

func TestSignalContext_Merge_ListsUnionDedupe(t *testing.T) {
	sc := NewSignalContext(uuid.New())
	sc.Merge(InteractionAnswered, Extraction{
		Scheduling: &SchedulingConstraints{Constraints: []string{"weekends only"}},
	})
	sc.Merge(InteractionAnswered, Extraction{
		Scheduling: &SchedulingConstraints{Constraints: []string{"weekends only", "after 5pm"}},
	})

	if len(sc.Scheduling.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %v", sc.Scheduling.Constraints)
	}
}

func TestSignalContext_Merge_ObjectionsByTopicKeepHighestSeverity(t *testing.T) {
	sc := NewSignalContext(uuid.New())
	sc.Merge(InteractionAnswered, Extraction{
		Objections: []Objection{{Topic: "safety", Severity: SeverityHigh, Detail: "contact sport"}},
	})
	sc.Merge(InteractionAnswered, Extraction{
		Objections: []Objection{
			{Topic: "safety", Severity: SeverityLow},
			{Topic: "distance", Severity: SeverityModerate},
		},
	})

	if len(sc.Objections) != 2 {
		t.Fatalf("expected 2 objections, got %d", len(sc.Objections))
	}
	for _, o := range sc.Objections {
		if o.Topic == "safety" && o.Severity != SeverityHigh {
			t.Fatalf("safety severity downgraded to %s", o.Severity)
		}
	}
}

func TestSignalContext_Merge_OpenSignalsOverwriteByName(t *testing.T) {
	sc := NewSignalContext(uuid.New())
	sc.Merge(InteractionAnswered, Extraction{
		OpenSignals: []OpenSignal{{Name: "competitor_mention", Urgency: UrgencyLow}},
	})
	sc.Merge(InteractionAnswered, Extraction{
		OpenSignals: []OpenSignal{{Name: "competitor_mention", Urgency: UrgencyHigh, SuggestedAction: "differentiate on coaching"}},
	})

	if len(sc.Open) != 1 {
		t.Fatalf("expected 1 open signal, got %d", len(sc.Open))
	}
	if sc.Open[0].Urgency != UrgencyHigh {
		t.Fatalf("open signal not overwritten: %s", sc.Open[0].Urgency)
	}
}

func TestSignalContext_Merge_LastObservationsRefresh(t *testing.T) {
	sc := NewSignalContext(uuid.New())
	sc.Merge(InteractionAnswered, Extraction{Intent: IntentInterested, Sentiment: SentimentPositive})
	sc.Merge(InteractionNoAnswer, Extraction{})

	if sc.LastStatus != InteractionNoAnswer {
		t.Fatalf("status not refreshed: %s", sc.LastStatus)
	}
	// Absent intent and sentiment keep their last observed values.
	if sc.LastIntent != IntentInterested || sc.LastSentiment != SentimentPositive {
		t.Fatalf("empty extraction clobbered intent/sentiment: %s/%s", sc.LastIntent, sc.LastSentiment)
	}
}
