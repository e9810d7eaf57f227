package model

import (
	"time"
)

// Journey is a user's multi-week goal-breakdown plan. At most one journey per
// user is active; creating a new one deactivates the rest.
type Journey struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Title        string    `db:"title"`
	OriginalGoal string    `db:"original_goal"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

// Milestone is one week (or equivalent period) of a journey.
type Milestone struct {
	ID        string `db:"id"`
	JourneyID string `db:"journey_id"`
	Week      int    `db:"week"`
	Goal      string `db:"goal"`
}

// DailyTask is an atomic to-do item within a milestone. A task with a linked
// target is completed only through photo verification of that target.
type DailyTask struct {
	ID          string  `db:"id"`
	MilestoneID string  `db:"milestone_id"`
	Task        string  `db:"task"`
	Position    int     `db:"position"`
	Completed   bool    `db:"completed"`
	TargetID    *string `db:"target_id"`
}

func (t *DailyTask) Verifiable() bool {
	return t.TargetID != nil && *t.TargetID != ""
}
