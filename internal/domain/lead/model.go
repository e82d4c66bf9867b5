package lead

import (
	"errors"
	"strings"
	"time"
)

// Lead source constants.
const (
	SourceLandingPage = "landing_page"
	SourceBlog        = "blog"
	SourceReferral    = "referral"
)

// Domain errors
var (
	ErrEmptyEmail   = errors.New("lead email is required")
	ErrInvalidEmail = errors.New("lead email must contain '@'")
)

// Lead is one marketing-site form submission.
type Lead struct {
	ID             string
	Name           string
	Email          string
	RestaurantName string
	LocationCount  int
	Message        string
	Source         string
	CreatedAt      time.Time
}

// Validate checks required fields for a Lead.
// PRE: Lead struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(l.Email, "@") {
		return ErrInvalidEmail
	}
	if l.Source == "" {
		l.Source = SourceLandingPage
	}
	return nil
}
