package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rewards attached to terminal decline and to stalling in place. A small
// stall penalty nudges the policy toward actions that move the funnel.
const (
	DeclinedReward = -1.0
	StallReward    = -0.02
)

type stagePair struct {
	from Stage
	to   Stage
}

// RewardTable maps observed stage transitions to scalar rewards. It is
// configuration, not code: defaults below can be overridden from a YAML file
// without touching the update logic.
type RewardTable struct {
	rewards map[stagePair]float64
}

// DefaultRewardTable returns the built-in transition rewards.
func DefaultRewardTable() *RewardTable {
	return &RewardTable{rewards: map[stagePair]float64{
		{StageNew, StageContacted}:        0.1,
		{StageContacted, StageInterested}: 0.4,
		{StageInterested, StageTrial}:     0.7,
		{StageTrial, StageEnrolled}:       1.0,
		{StageEnrolled, StageActive}:      0.3,
		{StageActive, StageAtRisk}:        -0.5,
		{StageAtRisk, StageInactive}:      -0.7,
		{StageAtRisk, StageActive}:        0.5,
		{StageInactive, StageAtRisk}:      0.3,
		{StageInactive, StageActive}:      0.6,
	}}
}

// Reward returns the scalar reward for a stage transition. The second return
// is false when the pair is not in the table and the zero default applied
// (callers log these for observability).
func (t *RewardTable) Reward(before, after Stage) (float64, bool) {
	if after.Terminal() {
		return DeclinedReward, true
	}
	if before == after {
		return StallReward, true
	}
	if r, ok := t.rewards[stagePair{before, after}]; ok {
		return r, true
	}
	return 0, false
}

// Set overrides the reward for one transition.
func (t *RewardTable) Set(before, after Stage, reward float64) {
	t.rewards[stagePair{before, after}] = reward
}

// LoadRewardTable reads YAML overrides from path and merges them onto the
// defaults. The file maps from-stage to to-stage to reward:
//
//	interested:
//	  trial: 0.8
//	at_risk:
//	  active: 0.6
func LoadRewardTable(path string) (*RewardTable, error) {
	table := DefaultRewardTable()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reward table: %w", err)
	}

	var overrides map[string]map[string]float64
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse reward table: %w", err)
	}

	for from, targets := range overrides {
		if !ValidStage(from) {
			return nil, fmt.Errorf("reward table: unknown stage %q", from)
		}
		for to, reward := range targets {
			if !ValidStage(to) {
				return nil, fmt.Errorf("reward table: unknown stage %q", to)
			}
			table.Set(Stage(from), Stage(to), reward)
		}
	}
	return table, nil
}
