package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questline/questline/internal/ai"
	"github.com/questline/questline/internal/ctxkeys"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const planReply = `{
  "journey_title": "Learn to Cook",
  "milestones": [
    {"week": 1, "weekly_goal": "Basics", "daily_tasks": ["Watch a knife skills video", "Cook a simple pasta"]}
  ]
}`

type journeyHandlerFixture struct {
	handler *JourneyHandler
	users   repository.UserRepository
	stub    *stubGenerator
}

func newJourneyHandlerFixture(t *testing.T) *journeyHandlerFixture {
	t.Helper()

	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	journeys := repository.NewJourneyRepository(database)
	stub := &stubGenerator{response: planReply}
	journeyService := service.NewJourneyService(journeys, service.NewGamificationService(users), stub)

	return &journeyHandlerFixture{
		handler: NewJourneyHandler(journeyService),
		users:   users,
		stub:    stub,
	}
}

func (f *journeyHandlerFixture) createUser(t *testing.T, username string) *model.User {
	t.Helper()

	user := &model.User{ID: username + "-id", Username: username, PasswordHash: "x"}
	require.NoError(t, f.users.Create(user))
	return user
}

func withUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(ctxkeys.WithUser(req.Context(), user))
}

func TestCreateJourneyHandler(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	user := f.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/app/journeys", strings.NewReader(`{"goal":"learn to cook"}`))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, withUser(req, user))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Learn to Cook", body["title"])
	assert.Equal(t, true, body["active"])

	milestones, ok := body["milestones"].([]any)
	require.True(t, ok)
	require.Len(t, milestones, 1)
	tasks := milestones[0].(map[string]any)["tasks"].([]any)
	assert.Len(t, tasks, 2)

	// "Cook a simple pasta" hits a verification keyword
	verifiable := tasks[1].(map[string]any)
	assert.NotNil(t, verifiable["target_id"])
}

func TestCreateJourneyHandler_EmptyGoal(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	user := f.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/app/journeys", strings.NewReader(`{"goal":""}`))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, withUser(req, user))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJourneyHandler_UpstreamFailure(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	f.stub.err = &ai.StatusError{StatusCode: 429, Body: "quota"}
	user := f.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/app/journeys", strings.NewReader(`{"goal":"learn to cook"}`))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, withUser(req, user))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestShowJourneyHandler_Foreign(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	req := httptest.NewRequest(http.MethodPost, "/app/journeys", strings.NewReader(`{"goal":"learn to cook"}`))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, withUser(req, alice))
	journeyID := decodeBody(t, rec)["id"].(string)

	req = httptest.NewRequest(http.MethodGet, "/app/journeys/"+journeyID, nil)
	req.SetPathValue("id", journeyID)
	rec = httptest.NewRecorder()
	f.handler.Show(rec, withUser(req, bob))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteTaskHandler(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	user := f.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/app/journeys", strings.NewReader(`{"goal":"learn to cook"}`))
	rec := httptest.NewRecorder()
	f.handler.Create(rec, withUser(req, user))
	body := decodeBody(t, rec)
	tasks := body["milestones"].([]any)[0].(map[string]any)["tasks"].([]any)
	taskID := tasks[0].(map[string]any)["id"].(string)

	req = httptest.NewRequest(http.MethodPost, "/app/tasks/"+taskID+"/complete", nil)
	req.SetPathValue("id", taskID)
	rec = httptest.NewRecorder()
	f.handler.CompleteTask(rec, withUser(req, user))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(service.TaskBonus), decodeBody(t, rec)["points_awarded"])

	got, err := f.users.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, service.TaskBonus, got.Points)
}

func TestCompleteTaskHandler_NotFound(t *testing.T) {
	f := newJourneyHandlerFixture(t)
	user := f.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/app/tasks/missing/complete", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	f.handler.CompleteTask(rec, withUser(req, user))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
