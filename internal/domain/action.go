package domain

// ActionKind is a semantic outreach strategy. The enumeration is closed and
// ordered: the order below is the deterministic tie-break for selection.
type ActionKind string

const (
	ActionWarmFollowUp        ActionKind = "warm_follow_up"
	ActionSchedulingPush      ActionKind = "scheduling_push"
	ActionScholarshipOutreach ActionKind = "scholarship_outreach"
	ActionInfoSend            ActionKind = "info_send"
	ActionGentleNudge         ActionKind = "gentle_nudge"
	ActionObjectionAddress    ActionKind = "objection_address"
	ActionWelcomeOnboard      ActionKind = "welcome_onboard"
	ActionRetentionCheckIn    ActionKind = "retention_check_in"
	ActionFamilyEngage        ActionKind = "family_engage"
	ActionChannelSwitch       ActionKind = "channel_switch"
	ActionWait                ActionKind = "wait"
	ActionStop                ActionKind = "stop"
)

// Actions lists every action in the fixed enumeration order.
func Actions() []ActionKind {
	return []ActionKind{
		ActionWarmFollowUp, ActionSchedulingPush, ActionScholarshipOutreach,
		ActionInfoSend, ActionGentleNudge, ActionObjectionAddress,
		ActionWelcomeOnboard, ActionRetentionCheckIn, ActionFamilyEngage,
		ActionChannelSwitch, ActionWait, ActionStop,
	}
}

func ValidAction(a string) bool {
	for _, known := range Actions() {
		if ActionKind(a) == known {
			return true
		}
	}
	return false
}

// DefaultChannel is the channel an action's brief template starts from.
// The composer may override it based on availability and preference.
func (a ActionKind) DefaultChannel() Channel {
	switch a {
	case ActionWarmFollowUp, ActionSchedulingPush, ActionRetentionCheckIn, ActionFamilyEngage:
		return ChannelVoice
	case ActionWait, ActionStop:
		return ChannelNone
	default:
		return ChannelSMS
	}
}

// minInteractionsForStop guards against giving up on a lead before a real
// outreach effort has been made.
const minInteractionsForStop = 3

// AdmissibleActions filters the action space down to actions that make sense
// for the lead's current state. Predicates are independent (not
// priority-ordered): every action whose conditions hold is included. An empty
// result falls back to a minimal always-legal set so the selector always has
// a choice.
func AdmissibleActions(lead *Lead, sc *SignalContext) []ActionKind {
	hasChannel := lead.HasPhone() || lead.HasEmail()

	var admissible []ActionKind
	for _, a := range Actions() {
		switch a {
		case ActionWelcomeOnboard:
			if lead.Stage != StageEnrolled {
				continue
			}
		case ActionRetentionCheckIn:
			if lead.Stage != StageActive && lead.Stage != StageAtRisk && lead.Stage != StageInactive {
				continue
			}
			if !hasChannel {
				continue
			}
		case ActionFamilyEngage:
			if sc == nil || (!sc.HasPendingDecisionMakers() && !sc.HasSiblings()) {
				continue
			}
		case ActionScholarshipOutreach:
			if sc == nil || sc.Financial.ConcernLevel == ConcernNone {
				continue
			}
		case ActionObjectionAddress:
			if sc == nil || !sc.HasObjections() {
				continue
			}
		case ActionSchedulingPush, ActionWarmFollowUp:
			if !hasChannel {
				continue
			}
		case ActionStop:
			if lead.TotalInteractions < minInteractionsForStop {
				continue
			}
		}
		admissible = append(admissible, a)
	}

	if len(admissible) == 0 {
		return []ActionKind{ActionWait, ActionGentleNudge}
	}
	return admissible
}
