package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
)

var (
	ErrGroupNameRequired   = errors.New("group name is required")
	ErrGroupNameTaken      = errors.New("a group with this name already exists")
	ErrAlreadyInGroup      = errors.New("already in a group")
	ErrNotGroupMember      = errors.New("not a member of this group")
	ErrTargetTitleRequired = errors.New("target title is required")
)

type GroupService struct {
	groupRepository repository.GroupRepository
	userRepository  repository.UserRepository
	gamification    *GamificationService
}

func NewGroupService(
	groupRepository repository.GroupRepository,
	userRepository repository.UserRepository,
	gamification *GamificationService,
) *GroupService {
	return &GroupService{
		groupRepository: groupRepository,
		userRepository:  userRepository,
		gamification:    gamification,
	}
}

// Create makes a new group and moves the creator into it.
func (s *GroupService) Create(user *model.User, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &model.Group{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	err := s.groupRepository.Create(group)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateGroupName) {
			return nil, ErrGroupNameTaken
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	err = s.userRepository.SetGroup(user.ID, &group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to join created group: %w", err)
	}
	user.GroupID = &group.ID

	return group, nil
}

// Join adds the user to a group. Users already in a group must leave first.
func (s *GroupService) Join(user *model.User, groupID string) (*model.Group, error) {
	if user.InGroup() {
		return nil, ErrAlreadyInGroup
	}

	group, err := s.groupRepository.ByID(groupID)
	if err != nil {
		return nil, err
	}

	err = s.userRepository.SetGroup(user.ID, &group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to join group: %w", err)
	}
	user.GroupID = &group.ID

	return group, nil
}

// Leave clears the user's group membership. A no-op for ungrouped users.
func (s *GroupService) Leave(user *model.User) error {
	if !user.InGroup() {
		return nil
	}

	err := s.userRepository.SetGroup(user.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	user.GroupID = nil

	return nil
}

func (s *GroupService) Groups() ([]*model.Group, error) {
	return s.groupRepository.Groups()
}

// GroupTargetDetail is a shared target with its completion set.
type GroupTargetDetail struct {
	Target      *model.GroupTarget
	CompletedBy []string
}

// GroupDetail is a group with members and shared targets, members-only.
type GroupDetail struct {
	Group   *model.Group
	Members []*model.User
	Targets []*GroupTargetDetail
}

// Detail loads a group aggregate. Only members may see the group page.
func (s *GroupService) Detail(user *model.User, groupID string) (*GroupDetail, error) {
	if user.GroupID == nil || *user.GroupID != groupID {
		return nil, ErrNotGroupMember
	}

	group, err := s.groupRepository.ByID(groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.groupRepository.Members(groupID)
	if err != nil {
		return nil, err
	}

	targets, err := s.groupRepository.Targets(groupID)
	if err != nil {
		return nil, err
	}

	detail := &GroupDetail{Group: group, Members: members}
	for _, target := range targets {
		completions, err := s.groupRepository.Completions(target.ID)
		if err != nil {
			return nil, err
		}
		detail.Targets = append(detail.Targets, &GroupTargetDetail{
			Target:      target,
			CompletedBy: completions,
		})
	}

	return detail, nil
}

// AddTarget creates a shared target in the user's own group.
func (s *GroupService) AddTarget(user *model.User, groupID, title string) (*model.GroupTarget, error) {
	if user.GroupID == nil || *user.GroupID != groupID {
		return nil, ErrNotGroupMember
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTargetTitleRequired
	}

	target := &model.GroupTarget{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Title:     title,
		CreatedAt: time.Now(),
	}

	err := s.groupRepository.CreateTarget(target)
	if err != nil {
		return nil, fmt.Errorf("failed to create group target: %w", err)
	}

	return target, nil
}

// CompleteTarget records the user in the target's completion set. Repeat
// completions are no-ops: the bonus pays out at most once per user.
func (s *GroupService) CompleteTarget(user *model.User, groupTargetID string) (bool, error) {
	target, err := s.groupRepository.TargetByID(groupTargetID)
	if err != nil {
		return false, err
	}

	if user.GroupID == nil || *user.GroupID != target.GroupID {
		return false, ErrNotGroupMember
	}

	added, err := s.groupRepository.AddCompletion(user.ID, target.ID)
	if err != nil {
		return false, fmt.Errorf("failed to record completion: %w", err)
	}
	if !added {
		return false, nil
	}

	err = s.gamification.Award(user.ID, GroupTargetBonus)
	if err != nil {
		return false, err
	}

	return true, nil
}

// Leaderboard returns every user ordered by points descending.
func (s *GroupService) Leaderboard() ([]*model.User, error) {
	return s.userRepository.Leaderboard()
}
