package domain

// Group membership statuses.
const (
	GroupStatusPending = 0
	GroupStatusActive  = 1
)

// Group is a named collection of users. Status and Editable describe the
// relationship between the group and the user the lookup was scoped to; they
// are derived per request, never persisted on the group itself.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Status   int  `json:"status"`
	Editable bool `json:"editable"`
}
