package dto

// LecturerFilter narrows the lecturer list. An empty Status lists every lecturer; Search matches
// name or email case-insensitively.
type LecturerFilter struct {
	Status string
	Search string
}
