package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bible-studies-api/internal/models"
)

// ClassRepository reads class sessions.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListOptions returns id/name pairs for classes in the given status ordered by name.
func (r *ClassRepository) ListOptions(ctx context.Context, status string) ([]models.ClassOption, error) {
	const query = `SELECT id, name FROM classes WHERE status = $1 ORDER BY name ASC`
	options := make([]models.ClassOption, 0)
	if err := r.db.SelectContext(ctx, &options, query, status); err != nil {
		return nil, fmt.Errorf("list class options: %w", err)
	}
	return options, nil
}
