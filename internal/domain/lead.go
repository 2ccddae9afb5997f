package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage is a lead's position in the outreach lifecycle.
//
// Acquisition: new -> contacted -> interested -> trial -> enrolled
// Retention:   enrolled -> active -> at_risk -> inactive
// Terminal:    declined, opted_out
type Stage string

const (
	StageNew        Stage = "new"
	StageContacted  Stage = "contacted"
	StageInterested Stage = "interested"
	StageTrial      Stage = "trial"
	StageEnrolled   Stage = "enrolled"
	StageActive     Stage = "active"
	StageAtRisk     Stage = "at_risk"
	StageInactive   Stage = "inactive"
	StageDeclined   Stage = "declined"
	StageOptedOut   Stage = "opted_out"
)

// Stages lists every stage in lifecycle order.
func Stages() []Stage {
	return []Stage{
		StageNew, StageContacted, StageInterested, StageTrial, StageEnrolled,
		StageActive, StageAtRisk, StageInactive, StageDeclined, StageOptedOut,
	}
}

func ValidStage(s string) bool {
	switch Stage(s) {
	case StageNew, StageContacted, StageInterested, StageTrial, StageEnrolled,
		StageActive, StageAtRisk, StageInactive, StageDeclined, StageOptedOut:
		return true
	}
	return false
}

// Terminal reports whether no further outreach is permitted for the stage.
func (s Stage) Terminal() bool {
	return s == StageDeclined || s == StageOptedOut
}

// acquisitionRank orders the acquisition funnel so stage derivation never
// regresses a lead. Retention and terminal stages are outside the funnel.
var acquisitionRank = map[Stage]int{
	StageNew:        0,
	StageContacted:  1,
	StageInterested: 2,
	StageTrial:      3,
	StageEnrolled:   4,
}

// retentionStages are only reachable from enrolled or from each other;
// the acquisition funnel can't skip directly to "active".
var retentionStages = map[Stage]bool{
	StageEnrolled: true,
	StageActive:   true,
	StageAtRisk:   true,
	StageInactive: true,
}

type Lead struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	PreferredChannel  Channel   `json:"preferred_channel,omitempty"`
	Stage             Stage     `json:"stage"`
	CampaignGoal      string    `json:"campaign_goal,omitempty"`
	TotalInteractions int       `json:"total_interactions"`
	VoiceAttempts     int       `json:"voice_attempts"`
	SMSAttempts       int       `json:"sms_attempts"`
	EmailAttempts     int       `json:"email_attempts"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (l *Lead) HasPhone() bool { return l.Phone != "" }
func (l *Lead) HasEmail() bool { return l.Email != "" }

// DeriveStage maps a detected intent onto the lead's next lifecycle stage.
// The acquisition funnel never regresses; retention stages move along their
// own ladder; an opt-out always wins.
func DeriveStage(current Stage, intent Intent, status InteractionStatus) Stage {
	if status == InteractionOptedOut {
		return StageOptedOut
	}
	if current.Terminal() {
		return current
	}

	if retentionStages[current] {
		return deriveRetentionStage(current, intent)
	}

	var proposed Stage
	switch intent {
	case IntentInterested, IntentConsidering:
		proposed = StageInterested
	case IntentScheduling, IntentAttending:
		proposed = StageTrial
	case IntentRequestingInfo:
		proposed = StageContacted
	case IntentDeclining:
		return StageDeclined
	case IntentObjecting, IntentNoResponse, IntentUnclear:
		if current == StageNew {
			return StageContacted
		}
		return current
	default:
		return current
	}

	if acquisitionRank[proposed] >= acquisitionRank[current] {
		return proposed
	}
	return current
}

// deriveRetentionStage moves a lead along the retention ladder:
// enrolled -> active (attending), active -> at_risk (pushback),
// at_risk <-> active, inactive -> at_risk (tentative return).
func deriveRetentionStage(current Stage, intent Intent) Stage {
	switch intent {
	case IntentDeclining:
		return StageInactive
	case IntentInterested, IntentScheduling, IntentAttending:
		return StageActive
	case IntentConsidering, IntentRequestingInfo:
		if current == StageInactive {
			return StageAtRisk
		}
		return current
	case IntentObjecting:
		if current == StageActive {
			return StageAtRisk
		}
		return current
	}
	return current
}
