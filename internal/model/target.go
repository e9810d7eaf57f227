package model

import (
	"time"
)

const (
	VerificationNotRequired = "not_required"
	VerificationPending     = "pending"
	VerificationVerified    = "verified"
	VerificationRejected    = "rejected"
)

// Target is a single verifiable goal instance owned by one user. Targets
// created from journey tasks carry verification_required and start pending;
// their completion is gated entirely by the photo verification outcome.
// UserID is nullable: deleting a user detaches targets instead of removing
// them.
type Target struct {
	ID                   string    `db:"id"`
	UserID               *string   `db:"user_id"`
	Title                string    `db:"title"`
	Completed            bool      `db:"completed"`
	VerificationRequired bool      `db:"verification_required"`
	VerificationStatus   string    `db:"verification_status"`
	CreatedAt            time.Time `db:"created_at"`
}

func (t *Target) OwnedBy(userID string) bool {
	return t.UserID != nil && *t.UserID == userID
}
