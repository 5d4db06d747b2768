package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bible-studies-api/internal/models"
)

var scheduleRowColumns = []string{"id", "class_id", "lecturer_id", "scheduled_date", "start_time", "end_time", "location", "notes", "status", "created_at", "updated_at"}

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newSchedule(t *testing.T) *models.Schedule {
	date, err := models.ParseDate("2026-11-02")
	require.NoError(t, err)
	return &models.Schedule{
		ClassID:       "class-1",
		LecturerID:    "lec-1",
		ScheduledDate: date,
		StartTime:     models.NewTimeOfDay(10, 0),
		EndTime:       models.NewTimeOfDay(11, 0),
	}
}

func TestScheduleRepositoryListScheduledForLecturerOnDate(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("s1", "class-1", "lec-1", "2026-11-02", "09:00:00", "10:00:00", nil, nil, "Scheduled", now, now).
		AddRow("s2", "class-2", "lec-1", "2026-11-02", "13:30:00", "15:00:00", "Hall B", nil, "Scheduled", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE lecturer_id = $1 AND scheduled_date = $2 AND status = $3 AND id <> $4 ORDER BY start_time ASC")).
		WithArgs("lec-1", "2026-11-02", "Scheduled", "s9").
		WillReturnRows(rows)

	date, _ := models.ParseDate("2026-11-02")
	list, err := repo.ListScheduledForLecturerOnDate(context.Background(), "lec-1", date, "s9")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NewTimeOfDay(9, 0), list[0].StartTime)
	assert.Equal(t, models.NewTimeOfDay(15, 0), list[1].EndTime)
	require.NotNil(t, list[1].Location)
	assert.Equal(t, "Hall B", *list[1].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateIfAvailableCommits(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("lec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("start_time < $4 AND $5 < end_time")).
		WithArgs("lec-1", "2026-11-02", "Scheduled", "11:00:00", "10:00:00").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns))
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sched := newSchedule(t)
	require.NoError(t, repo.CreateIfAvailable(context.Background(), sched))
	assert.NotEmpty(t, sched.ID)
	assert.Equal(t, models.ScheduleStatusScheduled, sched.Status)
	assert.False(t, sched.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateIfAvailableReportsOverlap(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("start_time < $4 AND $5 < end_time")).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).
			AddRow("s1", "class-7", "lec-1", "2026-11-02", "10:30:00", "11:30:00", nil, nil, "Scheduled", now, now))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), newSchedule(t))
	var conflict *models.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Conflict)
	assert.Equal(t, "s1", conflict.Conflict.ScheduleID)
	assert.Equal(t, models.NewTimeOfDay(10, 30), conflict.Conflict.StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateIfAvailableMapsConstraintErrors(t *testing.T) {
	cases := []struct {
		name  string
		code  pq.ErrorCode
		check func(t *testing.T, err error)
	}{
		{"exclusion", pqExclusionViolation, func(t *testing.T, err error) {
			var conflict *models.ScheduleConflictError
			assert.ErrorAs(t, err, &conflict)
		}},
		{"foreign key", pqForeignKeyViolation, func(t *testing.T, err error) {
			assert.True(t, errors.Is(err, models.ErrReferenceNotFound))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, cleanup := newScheduleRepoMock(t)
			defer cleanup()
			repo := NewScheduleRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(regexp.QuoteMeta("start_time < $4 AND $5 < end_time")).
				WillReturnRows(sqlmock.NewRows(scheduleRowColumns))
			mock.ExpectExec("INSERT INTO schedules").
				WillReturnError(&pq.Error{Code: tc.code})
			mock.ExpectRollback()

			err := repo.CreateIfAvailable(context.Background(), newSchedule(t))
			require.Error(t, err)
			tc.check(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestScheduleRepositoryCreateIfAvailableLockFailure(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), newSchedule(t))
	require.Error(t, err)
	var conflict *models.ScheduleConflictError
	assert.False(t, errors.As(err, &conflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListUpcoming(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	columns := append(append([]string{}, scheduleRowColumns...), "lecturer_name", "lecturer_email", "class_name")
	rows := sqlmock.NewRows(columns).
		AddRow("s1", "class-1", "lec-1", "2026-11-02", "09:00:00", "10:00:00", nil, nil, "Scheduled", now, now, "Ruth Miller", "ruth@example.com", "Romans")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.status = $1 AND s.scheduled_date >= $2 AND s.lecturer_id = $3")).
		WithArgs("Scheduled", "2026-11-01", "lec-1").
		WillReturnRows(rows)

	from, _ := models.ParseDate("2026-11-01")
	items, err := repo.ListUpcoming(context.Background(), models.UpcomingScheduleFilter{From: from, LecturerID: "lec-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ruth Miller", items[0].LecturerName)
	assert.Equal(t, "Romans", items[0].ClassName)
	assert.Equal(t, "s1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryOverview(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM lecturers WHERE status = \$1\) AS active_lecturers.+unnest\(subjects\)`).
		WithArgs("Active", "Scheduled", "2026-11-02").
		WillReturnRows(sqlmock.NewRows([]string{"active_lecturers", "upcoming_sessions", "today_sessions", "distinct_subjects"}).
			AddRow(4, 9, 2, 7))

	today, _ := models.ParseDate("2026-11-02")
	overview, err := repo.Overview(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, today, overview.Date)
	assert.Equal(t, 4, overview.ActiveLecturers)
	assert.Equal(t, 9, overview.UpcomingSessions)
	assert.Equal(t, 2, overview.TodaySessions)
	assert.Equal(t, 7, overview.DistinctSubjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryOverviewError(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS distinct_subjects")).WillReturnError(errors.New("connection reset"))

	today, _ := models.ParseDate("2026-11-02")
	_, err := repo.Overview(context.Background(), today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule overview")
}
