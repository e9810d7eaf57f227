package validation

import (
	"errors"
	"strings"
)

// ValidateUsername rejects empty or unreasonably long usernames.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > 100 {
		return errors.New("username must not exceed 100 characters")
	}
	return nil
}

// ValidatePassword enforces a minimum length and the bcrypt input limit.
// bcrypt silently truncates passwords longer than 72 bytes.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}
	return nil
}
