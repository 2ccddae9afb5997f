package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/store"
	"go.uber.org/zap"
)

// EngineService orchestrates the full interaction pipeline: persist, merge
// signals, derive the stage, settle credit for the previous decision, then
// select and record the next one. Processing is serialized per lead so
// version counters and the current-decision pointer never race.
type EngineService struct {
	leads        domain.LeadStore
	interactions domain.InteractionStore
	transitions  domain.TransitionStore
	events       domain.EventStore

	signals   *SignalService
	qtable    *QTableService
	decisions *DecisionService
	briefs    *BriefComposer

	locks  *leadLocks
	logger *zap.Logger

	now func() time.Time
}

func NewEngineService(
	leads domain.LeadStore,
	interactions domain.InteractionStore,
	transitions domain.TransitionStore,
	events domain.EventStore,
	signals *SignalService,
	qtable *QTableService,
	decisions *DecisionService,
	briefs *BriefComposer,
	logger *zap.Logger,
) *EngineService {
	return &EngineService{
		leads:        leads,
		interactions: interactions,
		transitions:  transitions,
		events:       events,
		signals:      signals,
		qtable:       qtable,
		decisions:    decisions,
		briefs:       briefs,
		locks:        newLeadLocks(),
		logger:       logger,
		now:          time.Now,
	}
}

// InteractionInput is one completed touchpoint reported by the outreach layer.
type InteractionInput struct {
	Channel    domain.Channel
	Direction  domain.Direction
	Status     domain.InteractionStatus
	Extraction domain.Extraction
}

// ProcessResult bundles everything one interaction produced.
type ProcessResult struct {
	Interaction *domain.Interaction
	Lead        *domain.Lead
	Decision    *domain.Decision
	Transition  *domain.StateTransition
	StageBefore domain.Stage
}

// ProcessInteraction runs the pipeline for one completed interaction and
// returns the new current decision. The Q-update inside settles the PREVIOUS
// decision: credit for an action is only assigned once its outcome is
// observable, which is when the next interaction arrives.
func (s *EngineService) ProcessInteraction(ctx context.Context, leadID uuid.UUID, in InteractionInput) (*ProcessResult, error) {
	unlock := s.locks.lock(leadID)
	defer unlock()

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	stageBefore := lead.Stage

	interaction := &domain.Interaction{
		ID:         uuid.New(),
		LeadID:     leadID,
		Channel:    in.Channel,
		Direction:  in.Direction,
		Status:     in.Status,
		Extraction: in.Extraction,
		CreatedAt:  s.now(),
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, leadID, domain.EventInteractionCompleted, interaction.ID.String(),
		"interaction completed on "+string(in.Channel),
		map[string]any{"channel": in.Channel, "status": in.Status, "intent": in.Extraction.Intent})

	sc, err := s.signals.MergeInteraction(ctx, leadID, in.Status, in.Extraction)
	if err != nil {
		return nil, err
	}
	s.recordEvent(ctx, leadID, domain.EventSignalsMerged, interaction.ID.String(),
		"signal context updated", map[string]any{"version": sc.Version})

	if err := s.leads.RecordAttempt(ctx, leadID, in.Channel); err != nil {
		return nil, err
	}
	lead.TotalInteractions++
	switch in.Channel {
	case domain.ChannelVoice:
		lead.VoiceAttempts++
	case domain.ChannelSMS:
		lead.SMSAttempts++
	case domain.ChannelEmail:
		lead.EmailAttempts++
	}

	newStage := domain.DeriveStage(stageBefore, in.Extraction.Intent, in.Status)
	if newStage != stageBefore {
		if err := s.leads.UpdateStage(ctx, leadID, newStage); err != nil {
			return nil, err
		}
		lead.Stage = newStage
		s.recordEvent(ctx, leadID, domain.EventStageChanged, interaction.ID.String(),
			"stage changed: "+string(stageBefore)+" -> "+string(newStage),
			map[string]any{"from": stageBefore, "to": newStage})
	}

	transition, err := s.settlePrevious(ctx, lead, sc, interaction.ID, stageBefore, newStage)
	if err != nil {
		return nil, err
	}

	decision, err := s.decide(ctx, lead, sc, interaction.ID)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Interaction: interaction,
		Lead:        lead,
		Decision:    decision,
		Transition:  transition,
		StageBefore: stageBefore,
	}, nil
}

// settlePrevious assigns credit to the lead's previous current decision now
// that its outcome (this interaction) is observable. A lead with no prior
// decision has nothing to settle.
func (s *EngineService) settlePrevious(ctx context.Context, lead *domain.Lead, sc *domain.SignalContext, interactionID uuid.UUID, stageBefore, stageAfter domain.Stage) (*domain.StateTransition, error) {
	prev, err := s.decisions.Current(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	reward := s.qtable.Reward(stageBefore, stageAfter)

	// The successor state keeps the bucket the previous decision was made
	// under; the fresh bucket belongs to the NEXT decision's state, not to
	// this settlement.
	stateAfter := domain.StateID{Stage: stageAfter, Bucket: prev.State.Bucket}
	admissibleAfter := domain.AdmissibleActions(lead, sc)

	upd, err := s.qtable.Update(ctx, prev.State, prev.Action, reward, stateAfter, admissibleAfter)
	if err != nil {
		return nil, err
	}

	transition := &domain.StateTransition{
		ID:            uuid.New(),
		LeadID:        lead.ID,
		DecisionID:    prev.ID,
		InteractionID: interactionID,
		StateBefore:   prev.State,
		ActionTaken:   prev.Action,
		StateAfter:    stateAfter,
		Reward:        reward,
		QValueBefore:  upd.Before.Value,
		QValueAfter:   upd.After.Value,
		CreatedAt:     s.now(),
	}
	if err := s.transitions.Create(ctx, transition); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, lead.ID, domain.EventQUpdate, transition.ID.String(),
		"credit assigned to "+string(prev.Action)+" in "+prev.State.String(),
		map[string]any{
			"reward":   reward,
			"q_before": upd.Before.Value,
			"q_after":  upd.After.Value,
		})
	return transition, nil
}

// decide encodes the current state, selects the next action, composes its
// brief, and records the new current decision.
func (s *EngineService) decide(ctx context.Context, lead *domain.Lead, sc *domain.SignalContext, interactionID uuid.UUID) (*domain.Decision, error) {
	state := domain.EncodeState(lead.Stage, sc)
	admissible := domain.AdmissibleActions(lead, sc)

	var (
		action   domain.ActionKind
		qValue   float64
		override bool
	)
	if lead.Stage.Terminal() {
		// Terminal stages force a stop regardless of any learned value.
		action = domain.ActionStop
		override = true
	} else {
		var err error
		action, qValue, err = s.qtable.BestAdmissible(ctx, state, admissible)
		if err != nil {
			return nil, err
		}
	}

	composed := s.briefs.Compose(action, lead, sc, qValue)

	var scheduledFor *time.Time
	if composed.TimingHours > 0 {
		t := s.now().Add(time.Duration(composed.TimingHours) * time.Hour)
		scheduledFor = &t
	}

	snapshot := *sc
	decision := &domain.Decision{
		ID:            uuid.New(),
		LeadID:        lead.ID,
		InteractionID: interactionID,
		Action:        action,
		Channel:       composed.Channel,
		Priority:      composed.Priority,
		State:         state,
		QValue:        qValue,
		Brief:         composed.Brief,
		PolicyInputs: domain.PolicyInputs{
			Stage:             lead.Stage,
			Bucket:            state.Bucket,
			TotalInteractions: lead.TotalInteractions,
			VoiceAttempts:     lead.VoiceAttempts,
			SMSAttempts:       lead.SMSAttempts,
			EmailAttempts:     lead.EmailAttempts,
			LastIntent:        sc.LastIntent,
			LastSentiment:     sc.LastSentiment,
			LastStatus:        sc.LastStatus,
			HasPhone:          lead.HasPhone(),
			HasEmail:          lead.HasEmail(),
			AdmissibleActions: admissible,
			OverrideApplied:   override,
		},
		SignalContext: &snapshot,
		ScheduledFor:  scheduledFor,
		CreatedAt:     s.now(),
	}

	if err := s.decisions.Record(ctx, decision); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, lead.ID, domain.EventDecisionProduced, decision.ID.String(),
		"next action: "+string(action),
		map[string]any{"action": action, "state": state.String(), "override": override})
	return decision, nil
}

// recordEvent appends to the lead's activity timeline. Timeline writes are
// best-effort; a failed event never fails the pipeline.
func (s *EngineService) recordEvent(ctx context.Context, leadID uuid.UUID, typ domain.EventType, sourceID, description string, payload map[string]any) {
	e := &domain.Event{
		ID:          uuid.New(),
		LeadID:      leadID,
		Type:        typ,
		SourceID:    sourceID,
		Payload:     payload,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.events.Create(ctx, e); err != nil {
		s.logger.Warn("event write failed",
			zap.String("lead_id", leadID.String()),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}
