package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/model"
)

var (
	ErrTargetNotFound = errors.New("target not found")
)

type TargetRepository interface {
	Create(target *model.Target) error
	ByID(id string) (*model.Target, error)
	ByUser(userID string) ([]*model.Target, error)
	Update(target *model.Target) error
}

type targetRepository struct {
	db *sqlx.DB
}

func NewTargetRepository(db *sqlx.DB) TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) Create(target *model.Target) error {
	query := `INSERT INTO targets (id, user_id, title, completed, verification_required, verification_status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		target.ID,
		target.UserID,
		target.Title,
		target.Completed,
		target.VerificationRequired,
		target.VerificationStatus,
		target.CreatedAt,
	)

	return err
}

func (r *targetRepository) ByID(id string) (*model.Target, error) {
	target := &model.Target{}
	query := `SELECT * FROM targets WHERE id = $1`

	err := r.db.Get(target, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTargetNotFound
	}

	return target, err
}

func (r *targetRepository) ByUser(userID string) ([]*model.Target, error) {
	var targets []*model.Target
	query := `SELECT * FROM targets WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&targets, query, userID)
	if err != nil {
		return nil, err
	}

	return targets, nil
}

func (r *targetRepository) Update(target *model.Target) error {
	query := `UPDATE targets
	          SET completed = $1, verification_status = $2
	          WHERE id = $3`

	result, err := r.db.Exec(query,
		target.Completed,
		target.VerificationStatus,
		target.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTargetNotFound
	}

	return nil
}
