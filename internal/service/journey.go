package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questline/questline/internal/ai"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
)

var (
	ErrGoalRequired = errors.New("a goal is required")
	// ErrMalformedPlan means the model answered but its reply could not be
	// turned into a journey. Distinct from transport failures, which pass
	// through as ai.StatusError.
	ErrMalformedPlan = errors.New("could not parse a journey plan from the AI response")

	ErrNotTaskOwner          = errors.New("task belongs to another user")
	ErrTaskNeedsVerification = errors.New("task is completed through photo verification")
	ErrTaskAlreadyCompleted  = errors.New("task already completed")
)

// verificationKeywords mark tasks whose completion needs photo evidence.
// Substring match against the lowercased task text.
var verificationKeywords = []string{"clean", "organize", "cook", "build", "draw", "create", "make"}

// TextGenerator produces free text from a prompt. Satisfied by *ai.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type JourneyService struct {
	journeyRepository repository.JourneyRepository
	gamification      *GamificationService
	generator         TextGenerator
}

func NewJourneyService(
	journeyRepository repository.JourneyRepository,
	gamification *GamificationService,
	generator TextGenerator,
) *JourneyService {
	return &JourneyService{
		journeyRepository: journeyRepository,
		gamification:      gamification,
		generator:         generator,
	}
}

// journeyPlan is the JSON shape the model is instructed to return.
type journeyPlan struct {
	JourneyTitle string `json:"journey_title"`
	Milestones   []struct {
		Week       int      `json:"week"`
		WeeklyGoal string   `json:"weekly_goal"`
		DailyTasks []string `json:"daily_tasks"`
	} `json:"milestones"`
}

// Generate asks the model to break the goal into a multi-week plan and
// materializes it. All prior journeys of the user are deactivated and the new
// Journey/Milestone/DailyTask/Target rows are written in one transaction, so
// a failure anywhere leaves the user's journey set unchanged.
func (s *JourneyService) Generate(ctx context.Context, userID, goal string) (*model.Journey, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrGoalRequired
	}

	text, err := s.generator.GenerateText(ctx, journeyPrompt(goal))
	if err != nil {
		return nil, fmt.Errorf("journey generation failed: %w", err)
	}

	raw, err := ai.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}

	var plan journeyPlan
	err = json.Unmarshal([]byte(raw), &plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}
	if plan.JourneyTitle == "" || len(plan.Milestones) == 0 {
		return nil, fmt.Errorf("%w: missing title or milestones", ErrMalformedPlan)
	}

	now := time.Now()
	journey := &model.Journey{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        plan.JourneyTitle,
		OriginalGoal: goal,
		Active:       true,
		CreatedAt:    now,
	}

	var milestones []*model.Milestone
	var tasks []*model.DailyTask
	var targets []*model.Target

	for _, ms := range plan.Milestones {
		milestone := &model.Milestone{
			ID:        uuid.New().String(),
			JourneyID: journey.ID,
			Week:      ms.Week,
			Goal:      ms.WeeklyGoal,
		}
		milestones = append(milestones, milestone)

		for i, taskText := range ms.DailyTasks {
			task := &model.DailyTask{
				ID:          uuid.New().String(),
				MilestoneID: milestone.ID,
				Task:        taskText,
				Position:    i,
			}

			if needsVerification(taskText) {
				ownerID := userID
				target := &model.Target{
					ID:                   uuid.New().String(),
					UserID:               &ownerID,
					Title:                taskText,
					VerificationRequired: true,
					VerificationStatus:   model.VerificationPending,
					CreatedAt:            now,
				}
				targets = append(targets, target)
				task.TargetID = &target.ID
			}

			tasks = append(tasks, task)
		}
	}

	err = s.journeyRepository.CreatePlan(journey, milestones, tasks, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to save journey: %w", err)
	}

	return journey, nil
}

func needsVerification(task string) bool {
	lower := strings.ToLower(task)
	for _, keyword := range verificationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func journeyPrompt(goal string) string {
	return fmt.Sprintf(`You are an expert goal-setter and productivity coach. Your task is to take a user's high-level goal and break it down into a structured, step-by-step "Journey." The plan should be realistic, encouraging, and build momentum over time. The journey should be for 4 weeks if the duration is not mentioned in '%[1]s'. Else you should provide the duration plan as mentioned in the '%[1]s'.

You must return your response as a single, valid JSON object. Do not include markdown fences.
If the duration is not 4 weeks then change the JSON accordingly (instead of week 1, week 2 etc. show something that is more appropriate).

The JSON object must have this exact structure:
{
  "journey_title": "Your Generated Title for the Journey",
  "milestones": [
    {"week": 1, "weekly_goal": "A summary of the goal for this week", "daily_tasks": ["Task 1", "Task 2", "Task 3", "Task 4", "Task 5"]},
    {"week": 2, "weekly_goal": "...", "daily_tasks": ["...", "...", "...", "...", "..."]},
    {"week": 3, "weekly_goal": "...", "daily_tasks": ["...", "...", "...", "...", "..."]},
    {"week": 4, "weekly_goal": "...", "daily_tasks": ["...", "...", "...", "...", "..."]}
  ]
}

User's Goal: "%[1]s"`, goal)
}

// MilestoneDetail is a milestone with its ordered tasks.
type MilestoneDetail struct {
	Milestone *model.Milestone
	Tasks     []*model.DailyTask
}

// JourneyDetail is a journey aggregate loaded as a whole unit.
type JourneyDetail struct {
	Journey    *model.Journey
	Milestones []*MilestoneDetail
}

// ActiveJourney loads the user's active journey with milestones and tasks.
// Returns nil when the user has no active journey.
func (s *JourneyService) ActiveJourney(userID string) (*JourneyDetail, error) {
	journey, err := s.journeyRepository.ActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.detail(journey)
}

// ByID loads a journey aggregate, restricted to its owner.
func (s *JourneyService) ByID(userID, journeyID string) (*JourneyDetail, error) {
	journey, err := s.journeyRepository.ByID(journeyID)
	if err != nil {
		return nil, err
	}
	if journey.UserID != userID {
		return nil, repository.ErrJourneyNotFound
	}

	return s.detail(journey)
}

func (s *JourneyService) detail(journey *model.Journey) (*JourneyDetail, error) {
	milestones, err := s.journeyRepository.Milestones(journey.ID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.journeyRepository.Tasks(journey.ID)
	if err != nil {
		return nil, err
	}

	byMilestone := make(map[string][]*model.DailyTask, len(milestones))
	for _, task := range tasks {
		byMilestone[task.MilestoneID] = append(byMilestone[task.MilestoneID], task)
	}

	detail := &JourneyDetail{Journey: journey}
	for _, milestone := range milestones {
		detail.Milestones = append(detail.Milestones, &MilestoneDetail{
			Milestone: milestone,
			Tasks:     byMilestone[milestone.ID],
		})
	}

	return detail, nil
}

func (s *JourneyService) Journeys(userID string) ([]*model.Journey, error) {
	return s.journeyRepository.ByUser(userID)
}

// CompleteTask marks a plain task done and awards the task bonus. Tasks with
// a linked target are rejected here; they complete through verification.
// Completing an already-completed task is reported, not re-awarded.
func (s *JourneyService) CompleteTask(userID, taskID string) error {
	task, err := s.journeyRepository.TaskByID(taskID)
	if err != nil {
		return err
	}

	owner, err := s.journeyRepository.TaskOwner(taskID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotTaskOwner
	}

	if task.Verifiable() {
		return ErrTaskNeedsVerification
	}
	if task.Completed {
		return ErrTaskAlreadyCompleted
	}

	err = s.journeyRepository.CompleteTask(taskID)
	if err != nil {
		return err
	}

	return s.gamification.Award(userID, TaskBonus)
}
