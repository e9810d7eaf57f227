package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	Delete(id string) error
	AddPoints(id string, amount int) error
	SetGroup(id string, groupID *string) error
	Leaderboard() ([]*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, username, password_hash, points, streak, last_login, last_target_at, group_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Points,
		user.Streak,
		user.LastLogin,
		user.LastTargetAt,
		user.GroupID,
		user.CreatedAt,
	)
	if err != nil {
		// Unique constraint violation (both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateUsername
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.Get(user, query, username)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users
	          SET points = $1, streak = $2, last_login = $3, last_target_at = $4, group_id = $5
	          WHERE id = $6`

	result, err := r.db.Exec(query,
		user.Points,
		user.Streak,
		user.LastLogin,
		user.LastTargetAt,
		user.GroupID,
		user.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) Delete(id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// AddPoints credits points atomically in the database rather than
// read-modify-write through the struct.
func (r *userRepository) AddPoints(id string, amount int) error {
	query := `UPDATE users SET points = points + $1 WHERE id = $2`

	result, err := r.db.Exec(query, amount, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) SetGroup(id string, groupID *string) error {
	query := `UPDATE users SET group_id = $1 WHERE id = $2`

	result, err := r.db.Exec(query, groupID, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Leaderboard returns all users ordered by points descending. Ties keep
// storage order.
func (r *userRepository) Leaderboard() ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users ORDER BY points DESC`

	err := r.db.Select(&users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}
