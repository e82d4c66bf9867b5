package location

import (
	"errors"
	"strings"
	"time"
)

// Location status constants
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("location name is required")
	ErrEmptyTimezone = errors.New("location timezone is required")
)

// Location is a single restaurant site. The count of active locations
// feeds the multi-store footer mode and the locations-used counter.
type Location struct {
	ID        string
	Name      string
	Address   string
	Timezone  string
	Status    string // active, archived
	CreatedAt time.Time
}

// Validate checks required fields for a Location.
// PRE: Location struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(l.Timezone) == "" {
		return ErrEmptyTimezone
	}
	return nil
}

// IsArchived returns true if the location has been archived.
// INVARIANT: Location fields are not mutated
func (l *Location) IsArchived() bool {
	return l.Status == StatusArchived
}

// Archive marks the location archived. Archived locations keep their
// history but stop receiving check runs.
// POST: Status is archived
func (l *Location) Archive() {
	l.Status = StatusArchived
}
