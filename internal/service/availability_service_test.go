package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

var errNoRows = sql.ErrNoRows

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func hm(h, m int) models.TimeOfDay {
	return models.NewTimeOfDay(h, m)
}

func TestAvailabilityScenarioA(t *testing.T) {
	store := newMemoryStore()
	day := mustDate(t, "2024-01-15")
	store.seed(models.Schedule{LecturerID: lecturerL, ClassID: classC, ScheduledDate: day, StartTime: hm(9, 0), EndTime: hm(10, 0)})
	svc := NewAvailabilityService(store, nil, nil)

	overlap, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: day, Range: models.TimeRange{Start: hm(9, 30), End: hm(10, 30)}}, models.CheckSourceQuery)
	require.NoError(t, err)
	assert.False(t, overlap.Available())
	assert.Equal(t, models.AvailabilityConflict, overlap.Status)
	require.NotNil(t, overlap.Conflict)
	assert.Equal(t, hm(9, 0), overlap.Conflict.StartTime)

	backToBack, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: day, Range: models.TimeRange{Start: hm(10, 0), End: hm(11, 0)}}, models.CheckSourceQuery)
	require.NoError(t, err)
	assert.True(t, backToBack.Available())
	assert.Nil(t, backToBack.Conflict)
}

func TestAvailabilityIgnoresOtherLecturersDatesAndStatuses(t *testing.T) {
	store := newMemoryStore()
	day := mustDate(t, "2024-01-15")
	store.seed(models.Schedule{LecturerID: lecturerM, ScheduledDate: day, StartTime: hm(9, 0), EndTime: hm(12, 0)})
	store.seed(models.Schedule{LecturerID: lecturerL, ScheduledDate: mustDate(t, "2024-01-16"), StartTime: hm(9, 0), EndTime: hm(12, 0)})
	store.seed(models.Schedule{LecturerID: lecturerL, ScheduledDate: day, StartTime: hm(9, 0), EndTime: hm(12, 0), Status: models.ScheduleStatusCancelled})
	svc := NewAvailabilityService(store, nil, nil)

	res, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: day, Range: models.TimeRange{Start: hm(10, 0), End: hm(11, 0)}}, models.CheckSourceLive)
	require.NoError(t, err)
	assert.True(t, res.Available())
}

func TestAvailabilityExcludesScheduleID(t *testing.T) {
	store := newMemoryStore()
	day := mustDate(t, "2024-01-15")
	store.seed(models.Schedule{ID: "existing", LecturerID: lecturerL, ScheduledDate: day, StartTime: hm(9, 0), EndTime: hm(10, 0)})
	svc := NewAvailabilityService(store, nil, nil)

	res, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: day, Range: models.TimeRange{Start: hm(9, 0), End: hm(10, 0)}, ExcludeScheduleID: "existing"}, models.CheckSourceQuery)
	require.NoError(t, err)
	assert.True(t, res.Available())
}

func TestAvailabilityLookupFailureIsUnknown(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("connection refused")
	metrics := NewMetricsService()
	svc := NewAvailabilityService(store, metrics, nil)

	res, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: mustDate(t, "2024-01-15"), Range: models.TimeRange{Start: hm(9, 0), End: hm(10, 0)}}, models.CheckSourceGuard)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAvailabilityUnknown))
	assert.Equal(t, models.AvailabilityUnknown, res.Status)
	assert.False(t, res.Available())
	assert.EqualValues(t, 1, metrics.Snapshot().AvailabilityUnknown)
}

// The checker must agree with a brute-force reading of the overlap rule.
func TestAvailabilityMatchesOverlapPredicate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	day := mustDate(t, "2024-03-01")

	for round := 0; round < 200; round++ {
		store := newMemoryStore()
		var existing []models.TimeRange
		n := rng.Intn(5)
		for i := 0; i < n; i++ {
			start := rng.Intn(20) * 30 * 60
			r := models.TimeRange{Start: models.TimeOfDay(start), End: models.TimeOfDay(start + (1+rng.Intn(4))*30*60)}
			existing = append(existing, r)
			store.seed(models.Schedule{LecturerID: lecturerL, ScheduledDate: day, StartTime: r.Start, EndTime: r.End})
		}
		svc := NewAvailabilityService(store, nil, nil)

		start := rng.Intn(20) * 30 * 60
		q := models.TimeRange{Start: models.TimeOfDay(start), End: models.TimeOfDay(start + (1+rng.Intn(4))*30*60)}
		want := true
		for _, r := range existing {
			if q.Start < r.End && r.Start < q.End {
				want = false
			}
		}

		res, err := svc.Check(context.Background(), models.AvailabilityQuery{LecturerID: lecturerL, Date: day, Range: q}, models.CheckSourceQuery)
		require.NoError(t, err)
		require.Equal(t, want, res.Available(), "round %d query %v existing %v", round, q, existing)
	}
}
