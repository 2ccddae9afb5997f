package domain

import (
	"fmt"
	"strings"
)

// ContextBucket is the situational refinement of a lifecycle stage, derived
// from the accumulated signal context by first-match priority.
type ContextBucket string

const (
	BucketUnreached          ContextBucket = "unreached"
	BucketNegative           ContextBucket = "negative"
	BucketSchedulingIntent   ContextBucket = "scheduling_intent"
	BucketPositiveEngagement ContextBucket = "positive_engagement"
	BucketFinancialConcern   ContextBucket = "financial_concern"
	BucketHasObjections      ContextBucket = "has_objections"
	BucketFamilyContext      ContextBucket = "family_context"
	BucketConsidering        ContextBucket = "considering"
	BucketNovelSignal        ContextBucket = "novel_signal"
	BucketNeutral            ContextBucket = "neutral"
)

// Buckets lists every bucket in priority order. The ordering IS the tie-break
// mechanism: the first predicate that matches wins, so buckets are mutually
// exclusive by construction.
func Buckets() []ContextBucket {
	return []ContextBucket{
		BucketUnreached, BucketNegative, BucketSchedulingIntent,
		BucketPositiveEngagement, BucketFinancialConcern, BucketHasObjections,
		BucketFamilyContext, BucketConsidering, BucketNovelSignal, BucketNeutral,
	}
}

func ValidBucket(b string) bool {
	for _, known := range Buckets() {
		if ContextBucket(b) == known {
			return true
		}
	}
	return false
}

// StateID identifies one discrete state of the decision space.
type StateID struct {
	Stage  Stage         `json:"stage"`
	Bucket ContextBucket `json:"bucket"`
}

func (s StateID) String() string {
	return string(s.Stage) + ":" + string(s.Bucket)
}

func (s StateID) Valid() bool {
	return ValidStage(string(s.Stage)) && ValidBucket(string(s.Bucket))
}

// ParseStateID parses a "stage:bucket" string.
func ParseStateID(raw string) (StateID, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return StateID{}, fmt.Errorf("malformed state %q", raw)
	}
	id := StateID{Stage: Stage(parts[0]), Bucket: ContextBucket(parts[1])}
	if !id.Valid() {
		return StateID{}, fmt.Errorf("unknown state %q", raw)
	}
	return id, nil
}

// bucketPredicate pairs a bucket with the condition under which it applies.
type bucketPredicate struct {
	bucket ContextBucket
	match  func(*SignalContext) bool
}

// bucketPredicates is evaluated strictly in order; keep it a slice, not a map.
var bucketPredicates = []bucketPredicate{
	{BucketUnreached, func(sc *SignalContext) bool {
		return sc.LastStatus == InteractionNoAnswer || sc.LastStatus == InteractionVoicemail
	}},
	{BucketNegative, func(sc *SignalContext) bool {
		return sc.LastIntent == IntentDeclining && sc.LastSentiment == SentimentNegative
	}},
	{BucketSchedulingIntent, func(sc *SignalContext) bool {
		return sc.LastIntent == IntentScheduling
	}},
	{BucketPositiveEngagement, func(sc *SignalContext) bool {
		return sc.LastIntent == IntentInterested && sc.LastSentiment == SentimentPositive
	}},
	{BucketFinancialConcern, func(sc *SignalContext) bool {
		return sc.Financial.ConcernLevel.AtLeast(ConcernModerate)
	}},
	{BucketHasObjections, func(sc *SignalContext) bool {
		return sc.HasObjections()
	}},
	{BucketFamilyContext, func(sc *SignalContext) bool {
		return sc.HasPendingDecisionMakers() || sc.HasSiblings()
	}},
	{BucketConsidering, func(sc *SignalContext) bool {
		return sc.LastIntent == IntentConsidering
	}},
	{BucketNovelSignal, func(sc *SignalContext) bool {
		return sc.HasUrgentOpenSignal()
	}},
}

// EncodeState maps a lifecycle stage and an accumulated signal context to the
// discrete state used by the Q-table. Pure and total: every input yields
// exactly one bucket, with neutral as the catch-all.
func EncodeState(stage Stage, sc *SignalContext) StateID {
	if sc == nil {
		return StateID{Stage: stage, Bucket: BucketNeutral}
	}
	for _, p := range bucketPredicates {
		if p.match(sc) {
			return StateID{Stage: stage, Bucket: p.bucket}
		}
	}
	return StateID{Stage: stage, Bucket: BucketNeutral}
}
