package models

// AvailabilityStatus is the tri-state outcome of an availability lookup.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityConflict  AvailabilityStatus = "conflict"
	AvailabilityUnknown   AvailabilityStatus = "unknown"
)

// CheckSource identifies which call site issued an availability check.
type CheckSource string

const (
	// CheckSourceLive is the debounced, advisory check driven by field edits.
	CheckSourceLive CheckSource = "live"
	// CheckSourceGuard is the authoritative check run immediately before commit.
	CheckSourceGuard CheckSource = "guard"
	// CheckSourceQuery is an ad-hoc lookup through the availability endpoint.
	CheckSourceQuery CheckSource = "query"
)

// AvailabilityQuery asks whether a lecturer is free for a window on a date.
type AvailabilityQuery struct {
	LecturerID        string
	Date              Date
	Range             TimeRange
	ExcludeScheduleID string
}

// AvailabilityResult carries the checker verdict and, on conflict, the blocking schedule.
type AvailabilityResult struct {
	Status   AvailabilityStatus `json:"status"`
	Conflict *ScheduleConflict  `json:"conflict,omitempty"`
}

// Available projects the tri-state result onto the boolean contract.
func (r AvailabilityResult) Available() bool {
	return r.Status == AvailabilityAvailable
}
