package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bible-studies-api/internal/dto"
)

func TestLecturerRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "subjects", "status", "created_at", "updated_at"}).
		AddRow("lec-1", "Aaron Lee", "aaron@example.com", nil, "{Genesis,Exodus}", "Active", now, now).
		AddRow("lec-2", "Ruth Miller", "ruth@example.com", "+1-555-0100", "{}", "Active", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lecturers WHERE status = $1 ORDER BY name ASC")).
		WithArgs("Active").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), dto.LecturerFilter{Status: "Active"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"Genesis", "Exodus"}, []string(list[0].Subjects))
	assert.Nil(t, list[0].Phone)
	assert.True(t, list[1].IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, subjects, status, created_at, updated_at FROM lecturers ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "subjects", "status", "created_at", "updated_at"}))

	list, err := repo.List(context.Background(), dto.LecturerFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM lecturers WHERE status = $1 AND (name ILIKE $2 OR email ILIKE $2) ORDER BY name ASC")).
		WithArgs("Active", "%ruth%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "subjects", "status", "created_at", "updated_at"}).
			AddRow("lec-2", "Ruth Miller", "ruth@example.com", nil, "{}", "Active", now, now))

	list, err := repo.List(context.Background(), dto.LecturerFilter{Status: "Active", Search: " ruth "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ruth Miller", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryListSearchEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lecturers WHERE (name ILIKE $1 OR email ILIKE $1) ORDER BY name ASC")).
		WithArgs(`%100\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "subjects", "status", "created_at", "updated_at"}))

	_, err := repo.List(context.Background(), dto.LecturerFilter{Search: "100%_off"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lecturers WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListOptions(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM classes WHERE status = $1 ORDER BY name ASC")).
		WithArgs("Active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("c1", "Acts").AddRow("c2", "Romans"))

	options, err := repo.ListOptions(context.Background(), "Active")
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Acts", options[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
