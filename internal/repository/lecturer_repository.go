package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
)

const lecturerColumns = "id, name, email, phone, subjects, status, created_at, updated_at"

// LecturerRepository reads lecturer records.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository constructs a LecturerRepository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns lecturers matching filter ordered by name. An empty status lists all.
func (r *LecturerRepository) List(ctx context.Context, filter dto.LecturerFilter) ([]models.Lecturer, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + lecturerColumns + " FROM lecturers"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	lecturers := make([]models.Lecturer, 0)
	if err := r.db.SelectContext(ctx, &lecturers, query, args...); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}

// FindByID fetches a lecturer by ID. It returns sql.ErrNoRows when absent.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	const query = `SELECT ` + lecturerColumns + ` FROM lecturers WHERE id = $1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}
