package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
)

// Point awards. Amounts are fixed; points only ever go up.
const (
	LoginBonus        = 5
	TaskBonus         = 10
	GroupTargetBonus  = 20
	VerificationBonus = 25
)

var (
	ErrNegativeAward = errors.New("award amount must be non-negative")
)

// GamificationService owns rank lookup, point awarding and the daily-login
// streak rules.
type GamificationService struct {
	userRepository repository.UserRepository
}

func NewGamificationService(userRepository repository.UserRepository) *GamificationService {
	return &GamificationService{userRepository: userRepository}
}

func (s *GamificationService) Award(userID string, amount int) error {
	if amount < 0 {
		return ErrNegativeAward
	}
	if amount == 0 {
		return nil
	}

	err := s.userRepository.AddPoints(userID, amount)
	if err != nil {
		return fmt.Errorf("failed to award points: %w", err)
	}
	return nil
}

// ApplyLoginBonus awards the daily login bonus and updates the streak.
// A re-login on the same calendar day changes nothing. A gap of exactly one
// day extends the streak; a longer gap resets it to zero. last_login always
// advances to today when the bonus applies. Returns whether anything changed.
func (s *GamificationService) ApplyLoginBonus(user *model.User, today time.Time) (bool, error) {
	last := dateOf(user.LastLogin)
	day := dateOf(today)

	if !last.Before(day) {
		return false, nil
	}

	gap := int(day.Sub(last).Hours() / 24)
	if gap > 1 {
		user.Streak = 0
	} else if gap == 1 {
		user.Streak++
	}
	user.Points += LoginBonus
	user.LastLogin = day

	err := s.userRepository.Update(user)
	if err != nil {
		return false, fmt.Errorf("failed to update login streak: %w", err)
	}

	return true, nil
}

// Rank returns the user's current tier and the next one (nil at the top).
func (s *GamificationService) Rank(points int) (model.Rank, *model.Rank) {
	return model.RankFor(points), model.NextRank(points)
}

// dateOf truncates to UTC midnight so streak math counts calendar days.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
