package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConcernLevel string

const (
	ConcernNone     ConcernLevel = "none"
	ConcernLow      ConcernLevel = "low"
	ConcernModerate ConcernLevel = "moderate"
	ConcernHigh     ConcernLevel = "high"
)

var concernRank = map[ConcernLevel]int{
	ConcernNone:     0,
	ConcernLow:      1,
	ConcernModerate: 2,
	ConcernHigh:     3,
}

// AtLeast reports whether c is at or above the given level.
func (c ConcernLevel) AtLeast(min ConcernLevel) bool {
	return concernRank[c] >= concernRank[min]
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityModerate: 1,
	SeverityHigh:     2,
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyModerate Urgency = "moderate"
	UrgencyHigh     Urgency = "high"
)

type FinancialSignals struct {
	ConcernLevel ConcernLevel `json:"concern_level"`
	Mentions     []string     `json:"mentions,omitempty"`
}

type SchedulingConstraints struct {
	Constraints    []string `json:"constraints,omitempty"`
	PreferredTimes []string `json:"preferred_times,omitempty"`
}

type FamilyContext struct {
	Siblings       []string `json:"siblings,omitempty"`
	DecisionMakers []string `json:"decision_makers,omitempty"`
	Notes          []string `json:"notes,omitempty"`
}

type Objection struct {
	Topic    string   `json:"topic"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail,omitempty"`
}

type OpenSignal struct {
	Name            string  `json:"name"`
	Urgency         Urgency `json:"urgency"`
	SuggestedAction string  `json:"suggested_action,omitempty"`
}

// SignalContext is the per-lead accumulated view of everything extraction has
// surfaced so far. Accumulation is monotone-or-overwrite per dimension: the
// financial concern level never decreases, lists are unioned and deduped, and
// objections are merged by topic keeping the highest severity seen.
type SignalContext struct {
	LeadID  uuid.UUID `json:"lead_id"`
	Version int       `json:"version"`

	Financial  FinancialSignals      `json:"financial"`
	Scheduling SchedulingConstraints `json:"scheduling"`
	Family     FamilyContext         `json:"family"`
	Objections []Objection           `json:"objections,omitempty"`
	Open       []OpenSignal          `json:"open_signals,omitempty"`

	// Last observed interaction signals, refreshed on every merge.
	LastIntent    Intent            `json:"last_intent,omitempty"`
	LastSentiment Sentiment         `json:"last_sentiment,omitempty"`
	LastStatus    InteractionStatus `json:"last_status,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSignalContext(leadID uuid.UUID) *SignalContext {
	return &SignalContext{
		LeadID:    leadID,
		Financial: FinancialSignals{ConcernLevel: ConcernNone},
	}
}

// Merge folds one interaction's extraction into the accumulated context.
// Absent dimensions leave their accumulated state untouched.
func (sc *SignalContext) Merge(status InteractionStatus, ext Extraction) {
	sc.Version++
	sc.LastStatus = status
	if ext.Intent != "" {
		sc.LastIntent = ext.Intent
	}
	if ext.Sentiment != "" {
		sc.LastSentiment = ext.Sentiment
	}

	if f := ext.Financial; f != nil {
		if concernRank[f.ConcernLevel] > concernRank[sc.Financial.ConcernLevel] {
			sc.Financial.ConcernLevel = f.ConcernLevel
		}
		sc.Financial.Mentions = unionStrings(sc.Financial.Mentions, f.Mentions)
	}

	if s := ext.Scheduling; s != nil {
		sc.Scheduling.Constraints = unionStrings(sc.Scheduling.Constraints, s.Constraints)
		sc.Scheduling.PreferredTimes = unionStrings(sc.Scheduling.PreferredTimes, s.PreferredTimes)
	}

	if f := ext.Family; f != nil {
		sc.Family.Siblings = unionStrings(sc.Family.Siblings, f.Siblings)
		sc.Family.DecisionMakers = unionStrings(sc.Family.DecisionMakers, f.DecisionMakers)
		sc.Family.Notes = unionStrings(sc.Family.Notes, f.Notes)
	}

	for _, obj := range ext.Objections {
		sc.mergeObjection(obj)
	}

	for _, sig := range ext.OpenSignals {
		sc.mergeOpenSignal(sig)
	}
}

func (sc *SignalContext) mergeObjection(obj Objection) {
	for i, existing := range sc.Objections {
		if existing.Topic != obj.Topic {
			continue
		}
		if severityRank[obj.Severity] > severityRank[existing.Severity] {
			sc.Objections[i] = obj
		}
		return
	}
	sc.Objections = append(sc.Objections, obj)
}

func (sc *SignalContext) mergeOpenSignal(sig OpenSignal) {
	for i, existing := range sc.Open {
		if existing.Name != sig.Name {
			continue
		}
		sc.Open[i] = sig
		return
	}
	sc.Open = append(sc.Open, sig)
}

func (sc *SignalContext) HasObjections() bool {
	return len(sc.Objections) > 0
}

func (sc *SignalContext) ObjectionTopics() []string {
	topics := make([]string, 0, len(sc.Objections))
	for _, o := range sc.Objections {
		topics = append(topics, o.Topic)
	}
	return topics
}

func (sc *SignalContext) HasSchedulingConstraints() bool {
	return len(sc.Scheduling.Constraints) > 0 || len(sc.Scheduling.PreferredTimes) > 0
}

func (sc *SignalContext) HasSiblings() bool {
	return len(sc.Family.Siblings) > 0
}

func (sc *SignalContext) HasPendingDecisionMakers() bool {
	return len(sc.Family.DecisionMakers) > 0
}

// HasUrgentOpenSignal reports whether any open-ended signal carries at least
// moderate urgency.
func (sc *SignalContext) HasUrgentOpenSignal() bool {
	for _, s := range sc.Open {
		if s.Urgency == UrgencyModerate || s.Urgency == UrgencyHigh {
			return true
		}
	}
	return false
}

func unionStrings(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range incoming {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		existing = append(existing, s)
	}
	return existing
}
