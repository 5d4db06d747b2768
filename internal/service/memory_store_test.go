package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
)

const (
	lecturerL = "0b4f6a52-1c0e-4f7e-9a43-3f5c8d2e1a01"
	lecturerM = "0b4f6a52-1c0e-4f7e-9a43-3f5c8d2e1a02"
	classC    = "5d2e9b71-8a6f-4c3d-b1e2-7a9c0d4f6b01"
)

// memoryStore serialises check-and-insert the way the database transaction does.
type memoryStore struct {
	mu          sync.Mutex
	schedules   []models.Schedule
	lecturers   map[string]models.Lecturer
	classes     map[string]string
	listErr     error
	createErr   error
	overviewErr error
	lookups     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		lecturers: map[string]models.Lecturer{
			lecturerL: {ID: lecturerL, Name: "Lydia Park", Email: "lydia@example.com", Status: models.LecturerStatusActive},
			lecturerM: {ID: lecturerM, Name: "Marcus Hale", Email: "marcus@example.com", Status: "Inactive"},
		},
		classes: map[string]string{classC: "Gospel of John"},
	}
}

func (m *memoryStore) seed(s models.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = models.ScheduleStatusScheduled
	}
	m.schedules = append(m.schedules, s)
}

func (m *memoryStore) ListScheduledForLecturerOnDate(_ context.Context, lecturerID string, date models.Date, excludeID string) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Schedule
	for _, s := range m.schedules {
		if s.LecturerID == lecturerID && s.ScheduledDate == date && s.Status == models.ScheduleStatusScheduled && s.ID != excludeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) CreateIfAvailable(_ context.Context, schedule *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.schedules {
		if s.LecturerID == schedule.LecturerID && s.ScheduledDate == schedule.ScheduledDate &&
			s.Status == models.ScheduleStatusScheduled && s.TimeRange().Overlaps(schedule.TimeRange()) {
			return &models.ScheduleConflictError{Message: "overlap", Conflict: models.ConflictFromSchedule(s)}
		}
	}
	if _, ok := m.lecturers[schedule.LecturerID]; !ok {
		return models.ErrReferenceNotFound
	}
	if _, ok := m.classes[schedule.ClassID]; !ok {
		return models.ErrReferenceNotFound
	}
	schedule.ID = uuid.NewString()
	m.schedules = append(m.schedules, *schedule)
	return nil
}

func (m *memoryStore) ListUpcoming(_ context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UpcomingSchedule
	for _, s := range m.schedules {
		if s.Status != filter.Status || s.ScheduledDate.Before(filter.From) {
			continue
		}
		if filter.LecturerID != "" && s.LecturerID != filter.LecturerID {
			continue
		}
		l := m.lecturers[s.LecturerID]
		out = append(out, models.UpcomingSchedule{Schedule: s, LecturerName: l.Name, LecturerEmail: l.Email, ClassName: m.classes[s.ClassID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate != out[j].ScheduledDate {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *memoryStore) Overview(_ context.Context, today models.Date) (dto.ScheduleOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overviewErr != nil {
		return dto.ScheduleOverview{}, m.overviewErr
	}
	overview := dto.ScheduleOverview{Date: today}
	subjects := map[string]struct{}{}
	for _, l := range m.lecturers {
		if l.Status != models.LecturerStatusActive {
			continue
		}
		overview.ActiveLecturers++
		for _, subject := range l.Subjects {
			subjects[subject] = struct{}{}
		}
	}
	overview.DistinctSubjects = len(subjects)
	for _, s := range m.schedules {
		if s.Status != models.ScheduleStatusScheduled || s.ScheduledDate.Before(today) {
			continue
		}
		overview.UpcomingSessions++
		if s.ScheduledDate == today {
			overview.TodaySessions++
		}
	}
	return overview, nil
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*models.Lecturer, error) {
	l, ok := m.lecturers[id]
	if !ok {
		return nil, errNoRows
	}
	return &l, nil
}

func (m *memoryStore) List(_ context.Context, filter dto.LecturerFilter) ([]models.Lecturer, error) {
	var out []models.Lecturer
	search := strings.ToLower(filter.Search)
	for _, l := range m.lecturers {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.Name), search) && !strings.Contains(strings.ToLower(l.Email), search) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) count(lecturerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.schedules {
		if s.LecturerID == lecturerID {
			n++
		}
	}
	return n
}

func (m *memoryStore) lookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}
