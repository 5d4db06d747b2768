package models

import (
	"time"

	"github.com/lib/pq"
)

// LecturerStatusActive marks a lecturer that can receive new schedules.
const LecturerStatusActive = "Active"

// Lecturer represents a teaching lecturer record.
type Lecturer struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Email     string         `db:"email" json:"email"`
	Phone     *string        `db:"phone" json:"phone,omitempty"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	Status    string         `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the lecturer is in Active status.
func (l Lecturer) IsActive() bool {
	return l.Status == LecturerStatusActive
}
