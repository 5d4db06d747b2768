package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
)

const scheduleColumns = "id, class_id, lecturer_id, scheduled_date, start_time, end_time, location, notes, status, created_at, updated_at"

// Postgres SQLSTATE codes mapped to domain errors.
const (
	pqForeignKeyViolation = "23503"
	pqExclusionViolation  = "23P01"
	pqCheckViolation      = "23514"
)

// ScheduleRepository provides persistence for lecturer schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListScheduledForLecturerOnDate returns Scheduled rows for a lecturer on a date, optionally excluding one id.
func (r *ScheduleRepository) ListScheduledForLecturerOnDate(ctx context.Context, lecturerID string, date models.Date, excludeID string) ([]models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE lecturer_id = $1 AND scheduled_date = $2 AND status = $3"
	args := []interface{}{lecturerID, date, models.ScheduleStatusScheduled}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	query += " ORDER BY start_time ASC"

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list lecturer schedules: %w", err)
	}
	return schedules, nil
}

// CreateIfAvailable inserts the schedule only when the lecturer has no overlapping Scheduled row.
// The check and insert share a transaction serialised per lecturer by an advisory lock; the
// exclusion constraint on the table catches writers that bypass this path.
func (r *ScheduleRepository) CreateIfAvailable(ctx context.Context, schedule *models.Schedule) (err error) {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = models.ScheduleStatusScheduled
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, schedule.LecturerID); err != nil {
		return fmt.Errorf("lock lecturer schedule: %w", err)
	}

	var existing models.Schedule
	lookupErr := tx.GetContext(ctx, &existing, `SELECT `+scheduleColumns+` FROM schedules WHERE lecturer_id = $1 AND scheduled_date = $2 AND status = $3 AND start_time < $4 AND $5 < end_time ORDER BY start_time ASC LIMIT 1`,
		schedule.LecturerID, schedule.ScheduledDate, models.ScheduleStatusScheduled, schedule.EndTime, schedule.StartTime)
	switch {
	case lookupErr == nil:
		err = &models.ScheduleConflictError{
			Message:  "lecturer already has a schedule overlapping this time",
			Conflict: models.ConflictFromSchedule(existing),
		}
		return err
	case !errors.Is(lookupErr, sql.ErrNoRows):
		err = fmt.Errorf("check schedule overlap: %w", lookupErr)
		return err
	}

	const insert = `INSERT INTO schedules (` + scheduleColumns + `) VALUES (:id, :class_id, :lecturer_id, :scheduled_date, :start_time, :end_time, :location, :notes, :status, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insert, schedule); err != nil {
		err = translateWriteError(err)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = translateWriteError(err)
		return err
	}
	return nil
}

// ListUpcoming returns schedules from a date onwards joined with lecturer and class names.
func (r *ScheduleRepository) ListUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, error) {
	var conditions []string
	var args []interface{}

	status := filter.Status
	if status == "" {
		status = models.ScheduleStatusScheduled
	}
	conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
	args = append(args, status)

	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("s.scheduled_date >= $%d", len(args)+1))
		args = append(args, filter.From)
	}
	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.lecturer_id = $%d", len(args)+1))
		args = append(args, filter.LecturerID)
	}

	query := `SELECT s.id, s.class_id, s.lecturer_id, s.scheduled_date, s.start_time, s.end_time, s.location, s.notes, s.status, s.created_at, s.updated_at,
		l.name AS lecturer_name, l.email AS lecturer_email, c.name AS class_name
		FROM schedules s
		JOIN lecturers l ON l.id = s.lecturer_id
		JOIN classes c ON c.id = s.class_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY s.scheduled_date ASC, s.start_time ASC`

	items := make([]models.UpcomingSchedule, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list upcoming schedules: %w", err)
	}
	return items, nil
}

// Overview counts Active lecturers, Scheduled sessions from today onwards, Scheduled sessions on
// today and the distinct subjects Active lecturers teach.
func (r *ScheduleRepository) Overview(ctx context.Context, today models.Date) (dto.ScheduleOverview, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM lecturers WHERE status = $1) AS active_lecturers,
		(SELECT COUNT(*) FROM schedules WHERE status = $2 AND scheduled_date >= $3) AS upcoming_sessions,
		(SELECT COUNT(*) FROM schedules WHERE status = $2 AND scheduled_date = $3) AS today_sessions,
		(SELECT COUNT(DISTINCT subject) FROM lecturers, unnest(subjects) AS subject WHERE status = $1) AS distinct_subjects`

	overview := dto.ScheduleOverview{Date: today}
	if err := r.db.GetContext(ctx, &overview, query, models.LecturerStatusActive, models.ScheduleStatusScheduled, today); err != nil {
		return dto.ScheduleOverview{}, fmt.Errorf("schedule overview: %w", err)
	}
	return overview, nil
}

func translateWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("create schedule: %w", err)
	}
	switch pqErr.Code {
	case pqExclusionViolation:
		return &models.ScheduleConflictError{Message: "lecturer already has a schedule overlapping this time"}
	case pqForeignKeyViolation:
		return fmt.Errorf("create schedule: %w", models.ErrReferenceNotFound)
	case pqCheckViolation:
		return fmt.Errorf("create schedule: end time must be after start time: %w", err)
	default:
		return fmt.Errorf("create schedule: %w", err)
	}
}
