package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/model"
)

var (
	ErrJourneyNotFound = errors.New("journey not found")
	ErrTaskNotFound    = errors.New("daily task not found")
)

type JourneyRepository interface {
	// CreatePlan deactivates all of the user's journeys and inserts the new
	// journey with its milestones, tasks and linked targets in a single
	// transaction. Any failure rolls the whole plan back.
	CreatePlan(journey *model.Journey, milestones []*model.Milestone, tasks []*model.DailyTask, targets []*model.Target) error

	ByID(id string) (*model.Journey, error)
	ByUser(userID string) ([]*model.Journey, error)
	ActiveByUser(userID string) (*model.Journey, error)
	Milestones(journeyID string) ([]*model.Milestone, error)
	Tasks(journeyID string) ([]*model.DailyTask, error)

	TaskByID(id string) (*model.DailyTask, error)
	TaskByTarget(targetID string) (*model.DailyTask, error)
	// TaskOwner resolves the owning user through task -> milestone -> journey.
	TaskOwner(taskID string) (string, error)
	CompleteTask(id string) error
}

type journeyRepository struct {
	db *sqlx.DB
}

func NewJourneyRepository(db *sqlx.DB) JourneyRepository {
	return &journeyRepository{db: db}
}

func (r *journeyRepository) CreatePlan(journey *model.Journey, milestones []*model.Milestone, tasks []*model.DailyTask, targets []*model.Target) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// One update; keeps the partial unique index on (user_id) WHERE active
	// satisfied before the new active journey lands.
	_, err = tx.Exec(`UPDATE journeys SET active = FALSE WHERE user_id = $1`, journey.UserID)
	if err != nil {
		return fmt.Errorf("failed to deactivate journeys: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO journeys (id, user_id, title, original_goal, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		journey.ID, journey.UserID, journey.Title, journey.OriginalGoal, journey.Active, journey.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journey: %w", err)
	}

	// Targets first: daily_tasks reference them.
	for _, target := range targets {
		_, err = tx.Exec(
			`INSERT INTO targets (id, user_id, title, completed, verification_required, verification_status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			target.ID, target.UserID, target.Title, target.Completed, target.VerificationRequired, target.VerificationStatus, target.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert target: %w", err)
		}
	}

	for _, milestone := range milestones {
		_, err = tx.Exec(
			`INSERT INTO milestones (id, journey_id, week, goal) VALUES ($1, $2, $3, $4)`,
			milestone.ID, milestone.JourneyID, milestone.Week, milestone.Goal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert milestone: %w", err)
		}
	}

	for _, task := range tasks {
		_, err = tx.Exec(
			`INSERT INTO daily_tasks (id, milestone_id, task, position, completed, target_id)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			task.ID, task.MilestoneID, task.Task, task.Position, task.Completed, task.TargetID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert daily task: %w", err)
		}
	}

	return tx.Commit()
}

func (r *journeyRepository) ByID(id string) (*model.Journey, error) {
	journey := &model.Journey{}
	query := `SELECT * FROM journeys WHERE id = $1`

	err := r.db.Get(journey, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrJourneyNotFound
	}

	return journey, err
}

func (r *journeyRepository) ByUser(userID string) ([]*model.Journey, error) {
	var journeys []*model.Journey
	query := `SELECT * FROM journeys WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&journeys, query, userID)
	if err != nil {
		return nil, err
	}

	return journeys, nil
}

func (r *journeyRepository) ActiveByUser(userID string) (*model.Journey, error) {
	journey := &model.Journey{}
	query := `SELECT * FROM journeys WHERE user_id = $1 AND active = TRUE`

	err := r.db.Get(journey, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrJourneyNotFound
	}

	return journey, err
}

func (r *journeyRepository) Milestones(journeyID string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `SELECT * FROM milestones WHERE journey_id = $1 ORDER BY week ASC`

	err := r.db.Select(&milestones, query, journeyID)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *journeyRepository) Tasks(journeyID string) ([]*model.DailyTask, error) {
	var tasks []*model.DailyTask
	query := `SELECT daily_tasks.* FROM daily_tasks
	          JOIN milestones ON milestones.id = daily_tasks.milestone_id
	          WHERE milestones.journey_id = $1
	          ORDER BY milestones.week ASC, daily_tasks.position ASC`

	err := r.db.Select(&tasks, query, journeyID)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *journeyRepository) TaskByID(id string) (*model.DailyTask, error) {
	task := &model.DailyTask{}
	query := `SELECT * FROM daily_tasks WHERE id = $1`

	err := r.db.Get(task, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}

	return task, err
}

func (r *journeyRepository) TaskByTarget(targetID string) (*model.DailyTask, error) {
	task := &model.DailyTask{}
	query := `SELECT * FROM daily_tasks WHERE target_id = $1`

	err := r.db.Get(task, query, targetID)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}

	return task, err
}

func (r *journeyRepository) TaskOwner(taskID string) (string, error) {
	var userID string
	query := `SELECT journeys.user_id FROM daily_tasks
	          JOIN milestones ON milestones.id = daily_tasks.milestone_id
	          JOIN journeys ON journeys.id = milestones.journey_id
	          WHERE daily_tasks.id = $1`

	err := r.db.Get(&userID, query, taskID)
	if err == sql.ErrNoRows {
		return "", ErrTaskNotFound
	}

	return userID, err
}

func (r *journeyRepository) CompleteTask(id string) error {
	query := `UPDATE daily_tasks SET completed = TRUE WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}
