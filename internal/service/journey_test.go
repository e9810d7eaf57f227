package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns a canned model reply.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const planReply = "Here is your plan:\n```json\n" + `{
  "journey_title": "30 Days to a Tidy Home",
  "milestones": [
    {"week": 1, "weekly_goal": "Declutter", "daily_tasks": ["Read a decluttering guide", "Clean your desk", "Sort the mail"]},
    {"week": 2, "weekly_goal": "Deep clean", "daily_tasks": ["Organize the closet", "Take a walk"]}
  ]
}` + "\n```"

type journeyFixture struct {
	users    repository.UserRepository
	journeys repository.JourneyRepository
	targets  repository.TargetRepository
	service  *JourneyService
	stub     *stubGenerator
}

func newJourneyFixture(t *testing.T, reply string) *journeyFixture {
	t.Helper()

	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	journeys := repository.NewJourneyRepository(database)
	targets := repository.NewTargetRepository(database)
	stub := &stubGenerator{response: reply}

	return &journeyFixture{
		users:    users,
		journeys: journeys,
		targets:  targets,
		service:  NewJourneyService(journeys, NewGamificationService(users), stub),
		stub:     stub,
	}
}

func TestGenerate(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	journey, err := f.service.Generate(context.Background(), user.ID, "get my home in order")
	require.NoError(t, err)
	assert.Equal(t, "30 Days to a Tidy Home", journey.Title)
	assert.Equal(t, "get my home in order", journey.OriginalGoal)
	assert.True(t, journey.Active)

	// The goal is embedded into the prompt
	require.Len(t, f.stub.prompts, 1)
	assert.Contains(t, f.stub.prompts[0], "get my home in order")

	detail, err := f.service.ByID(user.ID, journey.ID)
	require.NoError(t, err)
	require.Len(t, detail.Milestones, 2)
	assert.Equal(t, 1, detail.Milestones[0].Milestone.Week)
	assert.Equal(t, 2, detail.Milestones[1].Milestone.Week)
	require.Len(t, detail.Milestones[0].Tasks, 3)
	require.Len(t, detail.Milestones[1].Tasks, 2)

	// Task order matches the plan
	assert.Equal(t, "Read a decluttering guide", detail.Milestones[0].Tasks[0].Task)
	assert.Equal(t, "Clean your desk", detail.Milestones[0].Tasks[1].Task)

	// Keyword tasks get verification targets, the rest do not
	assert.Nil(t, detail.Milestones[0].Tasks[0].TargetID)
	require.NotNil(t, detail.Milestones[0].Tasks[1].TargetID) // "Clean ..."
	require.NotNil(t, detail.Milestones[1].Tasks[0].TargetID) // "Organize ..."
	assert.Nil(t, detail.Milestones[1].Tasks[1].TargetID)

	target, err := f.targets.ByID(*detail.Milestones[0].Tasks[1].TargetID)
	require.NoError(t, err)
	assert.True(t, target.VerificationRequired)
	assert.Equal(t, model.VerificationPending, target.VerificationStatus)
	assert.False(t, target.Completed)
	require.NotNil(t, target.UserID)
	assert.Equal(t, user.ID, *target.UserID)
}

func TestGenerate_FourWeekPlan(t *testing.T) {
	// Full-size plan: 4 milestones with 5 tasks each
	var sb strings.Builder
	sb.WriteString(`{"journey_title": "Full Plan", "milestones": [`)
	for week := 1; week <= 4; week++ {
		if week > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"week": %d, "weekly_goal": "Week %d goal", "daily_tasks": [`, week, week)
		for i := 0; i < 5; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			if i == 2 {
				fmt.Fprintf(&sb, `"Clean area %d"`, week)
			} else {
				fmt.Fprintf(&sb, `"Task %d.%d"`, week, i)
			}
		}
		sb.WriteString("]}")
	}
	sb.WriteString("]}")

	f := newJourneyFixture(t, sb.String())
	user := createTestUser(t, f.users, "alice")

	journey, err := f.service.Generate(context.Background(), user.ID, "a goal")
	require.NoError(t, err)

	milestones, err := f.journeys.Milestones(journey.ID)
	require.NoError(t, err)
	assert.Len(t, milestones, 4)

	tasks, err := f.journeys.Tasks(journey.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 20)

	// Exactly one "Clean ..." task per week carries a target
	withTarget := 0
	for _, task := range tasks {
		if task.TargetID != nil {
			withTarget++
			assert.Contains(t, task.Task, "Clean")
		}
	}
	assert.Equal(t, 4, withTarget)
}

func TestGenerate_ReplacesActiveJourney(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	first, err := f.service.Generate(context.Background(), user.ID, "first goal")
	require.NoError(t, err)
	second, err := f.service.Generate(context.Background(), user.ID, "second goal")
	require.NoError(t, err)

	active, err := f.service.ActiveJourney(user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.Journey.ID)

	old, err := f.journeys.ByID(first.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)

	journeys, err := f.service.Journeys(user.ID)
	require.NoError(t, err)
	assert.Len(t, journeys, 2)
}

func TestGenerate_EmptyGoal(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	_, err := f.service.Generate(context.Background(), user.ID, "   ")
	assert.ErrorIs(t, err, ErrGoalRequired)
	assert.Empty(t, f.stub.prompts)
}

func TestGenerate_MalformedReply(t *testing.T) {
	f := newJourneyFixture(t, "I am sorry, I cannot plan that.")
	user := createTestUser(t, f.users, "alice")

	_, err := f.service.Generate(context.Background(), user.ID, "a goal")
	assert.ErrorIs(t, err, ErrMalformedPlan)

	// Nothing written on failure
	journeys, err := f.service.Journeys(user.ID)
	require.NoError(t, err)
	assert.Empty(t, journeys)
}

func TestGenerate_MissingMilestones(t *testing.T) {
	f := newJourneyFixture(t, `{"journey_title": "Empty", "milestones": []}`)
	user := createTestUser(t, f.users, "alice")

	_, err := f.service.Generate(context.Background(), user.ID, "a goal")
	assert.ErrorIs(t, err, ErrMalformedPlan)
}

func TestActiveJourney_None(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	detail, err := f.service.ActiveJourney(user.ID)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestByID_ForeignJourney(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	journey, err := f.service.Generate(context.Background(), alice.ID, "a goal")
	require.NoError(t, err)

	_, err = f.service.ByID(bob.ID, journey.ID)
	assert.ErrorIs(t, err, repository.ErrJourneyNotFound)
}

func TestCompleteTask(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	journey, err := f.service.Generate(context.Background(), user.ID, "a goal")
	require.NoError(t, err)
	detail, err := f.service.ByID(user.ID, journey.ID)
	require.NoError(t, err)

	plain := detail.Milestones[0].Tasks[0] // no target
	err = f.service.CompleteTask(user.ID, plain.ID)
	require.NoError(t, err)

	got, err := f.users.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskBonus, got.Points)

	// Completing again reports, and pays nothing
	err = f.service.CompleteTask(user.ID, plain.ID)
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)

	got, err = f.users.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskBonus, got.Points)
}

func TestCompleteTask_Verifiable(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	user := createTestUser(t, f.users, "alice")

	journey, err := f.service.Generate(context.Background(), user.ID, "a goal")
	require.NoError(t, err)
	detail, err := f.service.ByID(user.ID, journey.ID)
	require.NoError(t, err)

	verifiable := detail.Milestones[0].Tasks[1] // "Clean your desk"
	err = f.service.CompleteTask(user.ID, verifiable.ID)
	assert.ErrorIs(t, err, ErrTaskNeedsVerification)
}

func TestCompleteTask_NotOwner(t *testing.T) {
	f := newJourneyFixture(t, planReply)
	alice := createTestUser(t, f.users, "alice")
	bob := createTestUser(t, f.users, "bob")

	journey, err := f.service.Generate(context.Background(), alice.ID, "a goal")
	require.NoError(t, err)
	detail, err := f.service.ByID(alice.ID, journey.ID)
	require.NoError(t, err)

	err = f.service.CompleteTask(bob.ID, detail.Milestones[0].Tasks[0].ID)
	assert.ErrorIs(t, err, ErrNotTaskOwner)
}
