package models

// Class session statuses.
const (
	ClassStatusActive    = "Active"
	ClassStatusCompleted = "Completed"
	ClassStatusInactive  = "Inactive"
)

// ClassOption is the pickable projection of a class.
type ClassOption struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
