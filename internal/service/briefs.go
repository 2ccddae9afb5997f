package service

import (
	"sort"
	"strings"

	"github.com/nextmove-ai/nextmove/internal/domain"
)

// briefTemplate is the base tactical package for one semantic action.
type briefTemplate struct {
	channel         domain.Channel
	tone            string
	timingHours     int
	timingRationale string
	directives      []domain.Directive
	infoToPrepare   []string
	thingsToAvoid   []string
}

// ComposedBrief bundles the brief with the resolved channel, priority, and
// timing so the orchestrator can build the decision record in one go.
type ComposedBrief struct {
	Brief       domain.Brief
	Channel     domain.Channel
	Priority    domain.Priority
	TimingHours int
}

// BriefComposer turns a chosen action and the full accumulated signal context
// into concrete tactics. Composition starts from the action's base template
// and appends a directive for every currently active signal, independent of
// which bucket drove selection: bucketing loses compound-signal information
// on purpose, and the brief layer is where it is recovered.
type BriefComposer struct{}

func NewBriefComposer() *BriefComposer {
	return &BriefComposer{}
}

func (c *BriefComposer) Compose(action domain.ActionKind, lead *domain.Lead, sc *domain.SignalContext, qValue float64) ComposedBrief {
	tmpl, ok := briefTemplates[action]
	if !ok {
		// Unknown actions never reach here through the selector; keep the
		// gentle nudge as the safe template for direct callers.
		tmpl = briefTemplates[domain.ActionGentleNudge]
		action = domain.ActionGentleNudge
	}

	brief := domain.Brief{
		ContentDirectives: append([]domain.Directive(nil), tmpl.directives...),
		OverallTone:       tmpl.tone,
		InfoToPrepare:     append([]string(nil), tmpl.infoToPrepare...),
		ThingsToAvoid:     append([]string(nil), tmpl.thingsToAvoid...),
		TimingRationale:   tmpl.timingRationale,
	}

	channel := resolveChannel(action, tmpl.channel, lead)

	if sc != nil {
		enrichFromSignals(&brief, action, sc)
	}

	sort.SliceStable(brief.ContentDirectives, func(i, j int) bool {
		return brief.ContentDirectives[i].Priority < brief.ContentDirectives[j].Priority
	})
	brief.InfoToPrepare = dedupe(brief.InfoToPrepare)
	brief.ThingsToAvoid = dedupe(brief.ThingsToAvoid)

	brief.MessageDraft = draftMessage(action, channel, lead, brief.ContentDirectives)

	return ComposedBrief{
		Brief:       brief,
		Channel:     channel,
		Priority:    derivePriority(action, lead.Stage, qValue),
		TimingHours: tmpl.timingHours,
	}
}

// enrichFromSignals appends a directive for every active signal dimension so
// a lead bucketed one way still gets tactics for everything else going on.
// Each added directive is tagged with the signal that produced it.
func enrichFromSignals(brief *domain.Brief, action domain.ActionKind, sc *domain.SignalContext) {
	if action == domain.ActionWait || action == domain.ActionStop {
		return
	}

	if sc.Financial.ConcernLevel.AtLeast(domain.ConcernModerate) && action != domain.ActionScholarshipOutreach {
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    "Be mindful of cost — if pricing comes up, mention financial aid options",
			Priority: 5,
			Signal:   "financial_concern",
		})
		brief.ThingsToAvoid = append(brief.ThingsToAvoid, "don't casually mention fees or premium options")
	}

	if sc.HasSiblings() {
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    "If conversation goes well, naturally mention sibling/family programs",
			Priority: 6,
			Signal:   "sibling_opportunity",
		})
		brief.ThingsToAvoid = append(brief.ThingsToAvoid, "don't lead with the upsell — mention siblings only if it flows naturally")
	}

	if sc.HasPendingDecisionMakers() && action != domain.ActionFamilyEngage {
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    "Ask if the other decision-maker has any questions — offer to include them",
			Priority: 5,
			Signal:   "pending_decision_maker",
		})
	}

	if sc.HasSchedulingConstraints() {
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    "Reference their scheduling constraints — show you remember and have worked around them",
			Priority: 4,
			Signal:   "scheduling_constraints",
		})
		brief.InfoToPrepare = append(brief.InfoToPrepare, "alternative schedule options that fit their constraints")
	}

	if sc.HasObjections() && action != domain.ActionObjectionAddress {
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    "Be ready to address concerns about: " + strings.Join(sc.ObjectionTopics(), ", "),
			Priority: 5,
			Signal:   "unaddressed_objection",
		})
	}

	for _, sig := range sc.Open {
		if sig.Urgency != domain.UrgencyModerate && sig.Urgency != domain.UrgencyHigh {
			continue
		}
		point := sig.SuggestedAction
		if point == "" {
			point = "Address '" + sig.Name + "' signal detected in previous conversation"
		}
		priority := 6
		if sig.Urgency == domain.UrgencyHigh {
			priority = 4
		}
		brief.ContentDirectives = append(brief.ContentDirectives, domain.Directive{
			Point:    point,
			Priority: priority,
			Signal:   sig.Name,
		})
	}
}

// resolveChannel picks the actual channel, respecting the lead's available
// channels and preference. channel_switch goes to the least-used channel.
func resolveChannel(action domain.ActionKind, base domain.Channel, lead *domain.Lead) domain.Channel {
	if base == domain.ChannelNone {
		return domain.ChannelNone
	}

	if action == domain.ActionChannelSwitch {
		return leastUsedChannel(lead)
	}

	// Respect a stated preference when it is softer than the template.
	if pref := lead.PreferredChannel; pref != "" {
		if base == domain.ChannelVoice && (pref == domain.ChannelSMS || pref == domain.ChannelEmail) {
			base = pref
		} else if base == domain.ChannelSMS && pref == domain.ChannelEmail {
			base = domain.ChannelEmail
		}
	}

	switch base {
	case domain.ChannelVoice, domain.ChannelSMS:
		if !lead.HasPhone() {
			if lead.HasEmail() {
				return domain.ChannelEmail
			}
			return base
		}
	case domain.ChannelEmail:
		if !lead.HasEmail() {
			if lead.HasPhone() {
				return domain.ChannelSMS
			}
			return base
		}
	}
	return base
}

func leastUsedChannel(lead *domain.Lead) domain.Channel {
	type candidate struct {
		channel  domain.Channel
		attempts int
	}
	var candidates []candidate
	if lead.HasPhone() {
		candidates = append(candidates,
			candidate{domain.ChannelVoice, lead.VoiceAttempts},
			candidate{domain.ChannelSMS, lead.SMSAttempts},
		)
	}
	if lead.HasEmail() {
		candidates = append(candidates, candidate{domain.ChannelEmail, lead.EmailAttempts})
	}
	if len(candidates) == 0 {
		return domain.ChannelSMS
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.attempts < best.attempts {
			best = c
		}
	}
	return best.channel
}

// derivePriority blends action type, lifecycle stage, and the learned value
// so priorities are meaningful even on a fresh Q-table.
func derivePriority(action domain.ActionKind, stage domain.Stage, qValue float64) domain.Priority {
	if action == domain.ActionSchedulingPush || qValue > 0.5 {
		return domain.PriorityHigh
	}
	if action == domain.ActionObjectionAddress || action == domain.ActionRetentionCheckIn || action == domain.ActionChannelSwitch {
		return domain.PriorityHigh
	}
	if stage == domain.StageAtRisk {
		return domain.PriorityHigh
	}
	switch action {
	case domain.ActionWarmFollowUp, domain.ActionScholarshipOutreach, domain.ActionWelcomeOnboard, domain.ActionFamilyEngage:
		return domain.PriorityNormal
	}
	if stage == domain.StageInterested || stage == domain.StageTrial || stage == domain.StageEnrolled {
		return domain.PriorityNormal
	}
	if qValue > 0.2 {
		return domain.PriorityNormal
	}
	return domain.PriorityLow
}

// draftMessage assembles a short template-based draft for text channels from
// the two highest-priority directives.
func draftMessage(action domain.ActionKind, channel domain.Channel, lead *domain.Lead, directives []domain.Directive) string {
	if channel != domain.ChannelSMS && channel != domain.ChannelEmail {
		return ""
	}
	if len(directives) == 0 {
		return ""
	}

	name := lead.FirstName
	if name == "" {
		name = "there"
	}

	lines := []string{"Hi " + name + ","}
	for i, d := range directives {
		if i == 2 {
			break
		}
		lines = append(lines, d.Point)
	}

	switch action {
	case domain.ActionScholarshipOutreach:
		lines = append(lines, "Would you like me to send over the details?")
	case domain.ActionGentleNudge:
		lines = append(lines, "Would you like to chat more about it?")
	case domain.ActionInfoSend:
		lines = append(lines, "Let me know if you have any other questions!")
	default:
		lines = append(lines, "Looking forward to hearing from you.")
	}

	return strings.Join(lines, "\n\n")
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

var briefTemplates = map[domain.ActionKind]briefTemplate{
	domain.ActionWarmFollowUp: {
		channel:         domain.ChannelVoice,
		tone:            "enthusiastic",
		timingHours:     4,
		timingRationale: "Call during evening hours when the parent is likely available and not rushed",
		directives: []domain.Directive{
			{Point: "Ask about the child by name — show you remember them", Priority: 1},
			{Point: "Share what a first session looks like and what to expect", Priority: 2},
			{Point: "Listen more than talk — let them express what matters to them", Priority: 3},
		},
		infoToPrepare: []string{"upcoming class schedule", "coach bio and credentials"},
		thingsToAvoid: []string{"don't hard-sell or push for commitment", "don't rush to schedule if they're not ready"},
	},
	domain.ActionSchedulingPush: {
		channel:         domain.ChannelVoice,
		tone:            "enthusiastic",
		timingHours:     1,
		timingRationale: "Act quickly while scheduling intent is fresh — strike within the hour",
		directives: []domain.Directive{
			{Point: "Reference their expressed interest in scheduling", Priority: 1},
			{Point: "Offer 2-3 specific time slots rather than 'when works for you'", Priority: 2},
			{Point: "Confirm what the child should bring and what to expect", Priority: 3},
		},
		infoToPrepare: []string{"available trial/visit time slots", "location and parking details", "what to bring list"},
		thingsToAvoid: []string{"don't offer too many options — decision fatigue kills conversion", "don't make them feel locked in"},
	},
	domain.ActionScholarshipOutreach: {
		channel:         domain.ChannelSMS,
		tone:            "empathetic",
		timingHours:     2,
		timingRationale: "Send written info so they can review financial options at their own pace before a call",
		directives: []domain.Directive{
			{Point: "Share specific scholarship/financial aid options available", Priority: 1},
			{Point: "Include concrete numbers — not vague 'affordable' language", Priority: 2},
			{Point: "Mention application process and any deadlines", Priority: 3},
		},
		infoToPrepare: []string{"scholarship application link", "payment plan breakdown", "financial aid contact"},
		thingsToAvoid: []string{"don't lead with full sticker price", "avoid implying they can't afford it", "no pressure about deadlines"},
	},
	domain.ActionInfoSend: {
		channel:         domain.ChannelSMS,
		tone:            "informational",
		timingHours:     2,
		timingRationale: "Send requested info promptly while the question is still top of mind",
		directives: []domain.Directive{
			{Point: "Directly answer the specific questions they asked", Priority: 1},
			{Point: "Include a clear next step (visit, call, trial class)", Priority: 2},
			{Point: "Keep it concise — a wall of text won't get read", Priority: 3},
		},
		infoToPrepare: []string{"program details relevant to their child's age and sport", "schedule and pricing overview"},
		thingsToAvoid: []string{"don't overload with information they didn't ask for", "don't skip their actual question to pitch"},
	},
	domain.ActionGentleNudge: {
		channel:         domain.ChannelSMS,
		tone:            "gentle",
		timingHours:     24,
		timingRationale: "Wait a full day — give them space to think without feeling pressured",
		directives: []domain.Directive{
			{Point: "Keep it short and friendly — one sentence plus a soft CTA", Priority: 1},
			{Point: "Reference something specific from the last conversation to show you listened", Priority: 2},
			{Point: "Make it easy to respond (yes/no question, not open-ended)", Priority: 3},
		},
		infoToPrepare: []string{"notes from last interaction"},
		thingsToAvoid: []string{"don't repeat what you already said", "don't use 'just checking in' — be specific", "no guilt language"},
	},
	domain.ActionObjectionAddress: {
		channel:         domain.ChannelSMS,
		tone:            "empathetic",
		timingHours:     12,
		timingRationale: "Give time to prepare a thoughtful response rather than a reactive one",
		directives: []domain.Directive{
			{Point: "Acknowledge their concern directly — don't brush it off", Priority: 1},
			{Point: "Provide specific facts/evidence that address the concern", Priority: 2},
			{Point: "Offer to discuss further if they want — don't assume one message resolves it", Priority: 3},
		},
		infoToPrepare: []string{"safety record and certifications", "testimonials from families with similar concerns"},
		thingsToAvoid: []string{"don't dismiss their concern", "don't say 'but' after acknowledging — use 'and'", "don't get defensive"},
	},
	domain.ActionWelcomeOnboard: {
		channel:         domain.ChannelSMS,
		tone:            "enthusiastic",
		timingHours:     2,
		timingRationale: "Send welcome info promptly after enrollment to reinforce their decision",
		directives: []domain.Directive{
			{Point: "Congratulate them and express excitement about having the child join", Priority: 1},
			{Point: "Share practical first-day details: schedule, location, what to bring", Priority: 2},
			{Point: "Introduce the coach or point of contact by name", Priority: 3},
		},
		infoToPrepare: []string{"first session date and time", "what to bring checklist", "coach name and photo", "parent FAQ"},
		thingsToAvoid: []string{"don't upsell additional programs yet", "don't overwhelm with admin details"},
	},
	domain.ActionRetentionCheckIn: {
		channel:         domain.ChannelVoice,
		tone:            "warm",
		timingHours:     48,
		timingRationale: "Don't rush — a retention call feels more genuine with a natural cadence, not reactive",
		directives: []domain.Directive{
			{Point: "Ask how the child is enjoying the program — genuinely listen", Priority: 1},
			{Point: "Share a specific positive observation about the child's progress if available", Priority: 2},
			{Point: "Ask if there's anything the academy can do better", Priority: 3},
		},
		infoToPrepare: []string{"child's attendance history", "any coach feedback", "upcoming events or milestones"},
		thingsToAvoid: []string{"don't make it feel like a survey", "don't mention payment or renewals", "don't ignore complaints"},
	},
	domain.ActionFamilyEngage: {
		channel:         domain.ChannelVoice,
		tone:            "warm",
		timingHours:     24,
		timingRationale: "Suggest a time when the whole family can talk — evenings or weekends",
		directives: []domain.Directive{
			{Point: "Acknowledge that this is a family decision, not just one parent's", Priority: 1},
			{Point: "Offer to have the other decision-maker join the next call or visit", Priority: 2},
			{Point: "Provide materials they can share with the other parent", Priority: 3},
		},
		infoToPrepare: []string{"program overview PDF suitable for sharing", "FAQ for skeptical family members"},
		thingsToAvoid: []string{"don't pressure the current contact to 'convince' the other parent", "don't bypass the decision-maker"},
	},
	domain.ActionChannelSwitch: {
		channel:         domain.ChannelSMS,
		tone:            "informational",
		timingHours:     12,
		timingRationale: "Previous channel hasn't worked — try a different one to break through",
		directives: []domain.Directive{
			{Point: "Briefly re-introduce yourself and the academy", Priority: 1},
			{Point: "Reference that you've tried to reach them (without guilt)", Priority: 2},
			{Point: "Make it easy to respond on this new channel", Priority: 3},
		},
		infoToPrepare: []string{"summary of previous outreach attempts"},
		thingsToAvoid: []string{"don't say 'I've been trying to reach you'", "don't repeat the exact same pitch"},
	},
	domain.ActionWait: {
		channel:         domain.ChannelNone,
		tone:            "none",
		timingHours:     48,
		timingRationale: "Strategically give space — sometimes silence is more effective than another touchpoint",
	},
	domain.ActionStop: {
		channel:         domain.ChannelNone,
		tone:            "none",
		timingHours:     0,
		timingRationale: "Cease outreach — further contact is unlikely to help and may damage the relationship",
	},
}
