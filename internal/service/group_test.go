package service

import (
	"testing"

	"github.com/questline/questline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupFixture struct {
	users   repository.UserRepository
	groups  repository.GroupRepository
	service *GroupService
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()

	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	groups := repository.NewGroupRepository(database)

	return &groupFixture{
		users:   users,
		groups:  groups,
		service: NewGroupService(groups, users, NewGamificationService(users)),
	}
}

func TestCreateGroup(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)
	assert.Equal(t, "Morning Club", group.Name)

	// Creator joins their own group
	got, err := f.users.ByID(alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, group.ID, *got.GroupID)
}

func TestCreateGroup_DuplicateName(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	_, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)

	_, err = f.service.Create(bob, "Morning Club")
	assert.ErrorIs(t, err, ErrGroupNameTaken)
}

func TestJoinGroup(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)

	_, err = f.service.Join(bob, group.ID)
	require.NoError(t, err)

	// Grouped users cannot join another group without leaving first
	other, err := f.service.Create(createTestUser(t, f.users, "carol"), "Night Owls")
	require.NoError(t, err)

	_, err = f.service.Join(bob, other.ID)
	assert.ErrorIs(t, err, ErrAlreadyInGroup)

	require.NoError(t, f.service.Leave(bob))
	_, err = f.service.Join(bob, other.ID)
	require.NoError(t, err)
}

func TestJoinGroup_NotFound(t *testing.T) {
	f := newGroupFixture(t)
	bob := createTestUser(t, f.users, "bob")

	_, err := f.service.Join(bob, "missing-id")
	assert.ErrorIs(t, err, repository.ErrGroupNotFound)
}

func TestLeaveGroup_Ungrouped(t *testing.T) {
	f := newGroupFixture(t)
	bob := createTestUser(t, f.users, "bob")

	// Leaving with no group is a no-op
	assert.NoError(t, f.service.Leave(bob))
}

func TestGroupDetail_MembersOnly(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)

	_, err = f.service.Detail(bob, group.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)

	detail, err := f.service.Detail(alice, group.ID)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, "alice", detail.Members[0].Username)
}

func TestAddTarget(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)

	_, err = f.service.AddTarget(bob, group.ID, "Run 5k together")
	assert.ErrorIs(t, err, ErrNotGroupMember)

	_, err = f.service.AddTarget(alice, group.ID, "   ")
	assert.ErrorIs(t, err, ErrTargetTitleRequired)

	target, err := f.service.AddTarget(alice, group.ID, "Run 5k together")
	require.NoError(t, err)
	assert.Equal(t, "Run 5k together", target.Title)
}

func TestCompleteTarget_AwardsOnce(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)
	target, err := f.service.AddTarget(alice, group.ID, "Run 5k together")
	require.NoError(t, err)

	awarded, err := f.service.CompleteTarget(alice, target.ID)
	require.NoError(t, err)
	assert.True(t, awarded)

	got, err := f.users.ByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, GroupTargetBonus, got.Points)

	// Repeat completion is acknowledged without a second payout
	awarded, err = f.service.CompleteTarget(alice, target.ID)
	require.NoError(t, err)
	assert.False(t, awarded)

	got, err = f.users.ByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, GroupTargetBonus, got.Points)
}

func TestCompleteTarget_NonMember(t *testing.T) {
	f := newGroupFixture(t)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	group, err := f.service.Create(alice, "Morning Club")
	require.NoError(t, err)
	target, err := f.service.AddTarget(alice, group.ID, "Run 5k together")
	require.NoError(t, err)

	_, err = f.service.CompleteTarget(bob, target.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestLeaderboard(t *testing.T) {
	f := newGroupFixture(t)
	gamification := NewGamificationService(f.users)

	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")
	carol := createTestUser(t, f.users, "carol")

	require.NoError(t, gamification.Award(alice.ID, 10))
	require.NoError(t, gamification.Award(bob.ID, 50))
	require.NoError(t, gamification.Award(carol.ID, 30))

	users, err := f.service.Leaderboard()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
	assert.Equal(t, "alice", users[2].Username)
}
