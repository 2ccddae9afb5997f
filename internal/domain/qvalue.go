package domain

import "time"

// QEntry is one row of the Q-table: the learned value of taking an action in
// a state, with the visit count backing the exploration bonus. Rows are
// created lazily on first touch; untouched pairs are implicit zeros.
type QEntry struct {
	State       StateID    `json:"state"`
	Action      ActionKind `json:"action"`
	Value       float64    `json:"value"`
	VisitCount  int        `json:"visit_count"`
	TotalReward float64    `json:"total_reward"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// QUpdate records one temporal-difference update for auditing.
type QUpdate struct {
	Before QEntry
	After  QEntry
}
