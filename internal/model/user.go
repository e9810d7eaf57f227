package model

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Points       int        `db:"points"`
	Streak       int        `db:"streak"`
	LastLogin    time.Time  `db:"last_login"`
	LastTargetAt *time.Time `db:"last_target_at"`
	GroupID      *string    `db:"group_id"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (u *User) InGroup() bool {
	return u.GroupID != nil && *u.GroupID != ""
}
