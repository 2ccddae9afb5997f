package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRewardTable_Defaults(t *testing.T) {
	table := DefaultRewardTable()

	r, known := table.Reward(StageNew, StageContacted)
	if !known || r != 0.1 {
		t.Fatalf("new->contacted: got %v (known=%v)", r, known)
	}
	r, known = table.Reward(StageTrial, StageEnrolled)
	if !known || r != 1.0 {
		t.Fatalf("trial->enrolled: got %v (known=%v)", r, known)
	}
	r, known = table.Reward(StageActive, StageAtRisk)
	if !known || r != -0.5 {
		t.Fatalf("active->at_risk: got %v (known=%v)", r, known)
	}
}

func TestRewardTable_TerminalAlwaysPenalized(t *testing.T) {
	table := DefaultRewardTable()

	for _, from := range []Stage{StageNew, StageInterested, StageTrial, StageActive} {
		for _, to := range []Stage{StageDeclined, StageOptedOut} {
			r, known := table.Reward(from, to)
			if !known || r != DeclinedReward {
				t.Fatalf("%s->%s: got %v (known=%v)", from, to, r, known)
			}
		}
	}
}

func TestRewardTable_StallPenalty(t *testing.T) {
	table := DefaultRewardTable()

	r, known := table.Reward(StageContacted, StageContacted)
	if !known || r != StallReward {
		t.Fatalf("stall: got %v (known=%v)", r, known)
	}
}

func TestRewardTable_UnknownPairDefaultsZero(t *testing.T) {
	table := DefaultRewardTable()

	// Regression skips levels the table never rewards.
	r, known := table.Reward(StageEnrolled, StageContacted)
	if known || r != 0 {
		t.Fatalf("unknown pair: got %v (known=%v)", r, known)
	}
}

func TestLoadRewardTable_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.yaml")
	content := "interested:\n  trial: 0.85\nat_risk:\n  active: 0.65\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := LoadRewardTable(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	r, _ := table.Reward(StageInterested, StageTrial)
	if r != 0.85 {
		t.Fatalf("override not applied: %v", r)
	}
	// Untouched pairs keep defaults.
	r, _ = table.Reward(StageTrial, StageEnrolled)
	if r != 1.0 {
		t.Fatalf("default lost after override load: %v", r)
	}
}

func TestLoadRewardTable_UnknownStageRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.yaml")
	if err := os.WriteFile(path, []byte("bogus:\n  trial: 0.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRewardTable(path); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestLoadRewardTable_EmptyPathUsesDefaults(t *testing.T) {
	table, err := LoadRewardTable("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	r, _ := table.Reward(StageNew, StageContacted)
	if r != 0.1 {
		t.Fatalf("defaults missing: %v", r)
	}
}
