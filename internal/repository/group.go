package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/model"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrDuplicateGroupName  = errors.New("group name already exists")
	ErrGroupTargetNotFound = errors.New("group target not found")
)

type GroupRepository interface {
	Create(group *model.Group) error
	ByID(id string) (*model.Group, error)
	Groups() ([]*model.Group, error)
	Members(groupID string) ([]*model.User, error)

	CreateTarget(target *model.GroupTarget) error
	TargetByID(id string) (*model.GroupTarget, error)
	Targets(groupID string) ([]*model.GroupTarget, error)

	// AddCompletion inserts the user into the target's completion set.
	// Returns false without error when the membership already existed.
	AddCompletion(userID, groupTargetID string) (bool, error)
	Completions(groupTargetID string) ([]string, error)
}

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(group *model.Group) error {
	query := `INSERT INTO groups (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(query, group.ID, group.Name, group.CreatedAt)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateGroupName
		}
		return err
	}

	return nil
}

func (r *groupRepository) ByID(id string) (*model.Group, error) {
	group := &model.Group{}
	query := `SELECT * FROM groups WHERE id = $1`

	err := r.db.Get(group, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}

	return group, err
}

func (r *groupRepository) Groups() ([]*model.Group, error) {
	var groups []*model.Group
	query := `SELECT * FROM groups ORDER BY created_at ASC`

	err := r.db.Select(&groups, query)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) Members(groupID string) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users WHERE group_id = $1 ORDER BY points DESC`

	err := r.db.Select(&users, query, groupID)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *groupRepository) CreateTarget(target *model.GroupTarget) error {
	query := `INSERT INTO group_targets (id, group_id, title, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, target.ID, target.GroupID, target.Title, target.CreatedAt)
	return err
}

func (r *groupRepository) TargetByID(id string) (*model.GroupTarget, error) {
	target := &model.GroupTarget{}
	query := `SELECT * FROM group_targets WHERE id = $1`

	err := r.db.Get(target, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGroupTargetNotFound
	}

	return target, err
}

func (r *groupRepository) Targets(groupID string) ([]*model.GroupTarget, error) {
	var targets []*model.GroupTarget
	query := `SELECT * FROM group_targets WHERE group_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&targets, query, groupID)
	if err != nil {
		return nil, err
	}

	return targets, nil
}

func (r *groupRepository) AddCompletion(userID, groupTargetID string) (bool, error) {
	// Set membership: the composite primary key makes a repeat insert a
	// conflict, which we treat as "already completed".
	query := `INSERT INTO group_target_completions (user_id, group_target_id, completed_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, group_target_id) DO NOTHING`

	result, err := r.db.Exec(query, userID, groupTargetID, time.Now())
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *groupRepository) Completions(groupTargetID string) ([]string, error) {
	var userIDs []string
	query := `SELECT user_id FROM group_target_completions WHERE group_target_id = $1`

	err := r.db.Select(&userIDs, query, groupTargetID)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}
