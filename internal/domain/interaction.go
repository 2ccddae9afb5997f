package domain

import (
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelNone  Channel = "none"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type InteractionStatus string

const (
	InteractionAnswered  InteractionStatus = "answered"
	InteractionNoAnswer  InteractionStatus = "no_answer"
	InteractionVoicemail InteractionStatus = "voicemail"
	InteractionReceived  InteractionStatus = "received"
	InteractionOptedOut  InteractionStatus = "opted_out"
)

type Intent string

const (
	IntentInterested     Intent = "interested"
	IntentConsidering    Intent = "considering"
	IntentScheduling     Intent = "scheduling"
	IntentAttending      Intent = "attending"
	IntentRequestingInfo Intent = "requesting_info"
	IntentObjecting      Intent = "objecting"
	IntentDeclining      Intent = "declining"
	IntentNoResponse     Intent = "no_response"
	IntentUnclear        Intent = "unclear"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Extraction is the structured bundle the upstream extraction collaborator
// produces for one interaction. A nil dimension means "no update", not
// "zero/none".
type Extraction struct {
	Summary     string                 `json:"summary,omitempty"`
	Intent      Intent                 `json:"intent,omitempty"`
	Sentiment   Sentiment              `json:"sentiment,omitempty"`
	Financial   *FinancialSignals      `json:"financial_signals,omitempty"`
	Scheduling  *SchedulingConstraints `json:"scheduling_constraints,omitempty"`
	Family      *FamilyContext         `json:"family_context,omitempty"`
	Objections  []Objection            `json:"objections,omitempty"`
	OpenSignals []OpenSignal           `json:"open_signals,omitempty"`
}

// Interaction is one completed customer touchpoint plus its extraction.
type Interaction struct {
	ID         uuid.UUID         `json:"id"`
	LeadID     uuid.UUID         `json:"lead_id"`
	Channel    Channel           `json:"channel"`
	Direction  Direction         `json:"direction"`
	Status     InteractionStatus `json:"status"`
	Extraction Extraction        `json:"extraction"`
	CreatedAt  time.Time         `json:"created_at"`
}
