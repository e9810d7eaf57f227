package model

import (
	"time"
)

type Group struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// GroupTarget is a goal shared across all members of a group. Completion is
// tracked per user as set membership, never as a counter.
type GroupTarget struct {
	ID        string    `db:"id"`
	GroupID   string    `db:"group_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

type GroupTargetCompletion struct {
	UserID        string    `db:"user_id"`
	GroupTargetID string    `db:"group_target_id"`
	CompletedAt   time.Time `db:"completed_at"`
}
