// Package pulsesurvey models anonymous employee sentiment surveys.
// Results stay hidden until a minimum number of respondents is reached
// so individual answers can never be singled out.
package pulsesurvey

import (
	"errors"
	"strings"
	"time"
)

// Survey status constants.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Cadence constants.
const (
	CadenceWeekly   = "weekly"
	CadenceBiweekly = "biweekly"
	CadenceMonthly  = "monthly"
)

// DefaultMinRespondents is the privacy floor applied when a survey does
// not set one explicitly.
const DefaultMinRespondents = 5

// Score bounds for a pulse answer.
const (
	MinScore = 1
	MaxScore = 5
)

// Domain errors
var (
	ErrEmptyQuestion   = errors.New("survey question is required")
	ErrInvalidCadence  = errors.New("cadence must be weekly, biweekly or monthly")
	ErrSurveyClosed    = errors.New("survey is closed")
	ErrAlreadyClosed   = errors.New("survey is already closed")
	ErrScoreOutOfRange = errors.New("score must be between 1 and 5")
)

// Survey is one recurring pulse question.
type Survey struct {
	ID             string
	Question       string
	Cadence        string
	Status         string // open, closed
	MinRespondents int
	CreatedBy      string
	CreatedAt      time.Time
	ClosedAt       time.Time
}

// Response is one anonymous answer. It deliberately carries no account
// or member identifier.
type Response struct {
	ID          string
	SurveyID    string
	Score       int
	Comment     string
	SubmittedAt time.Time
}

// Validate checks required fields for a Survey.
// PRE: Survey struct is initialized
// POST: Returns error if validation fails, nil otherwise; MinRespondents
// defaulted if unset
func (s *Survey) Validate() error {
	if strings.TrimSpace(s.Question) == "" {
		return ErrEmptyQuestion
	}
	switch s.Cadence {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly:
	default:
		return ErrInvalidCadence
	}
	if s.MinRespondents <= 0 {
		s.MinRespondents = DefaultMinRespondents
	}
	return nil
}

// IsOpen returns true while the survey accepts responses.
// INVARIANT: Survey fields are not mutated
func (s *Survey) IsOpen() bool {
	return s.Status == StatusOpen
}

// Close stops the survey from accepting responses.
// PRE: Survey is open
// POST: Status is closed, ClosedAt set
func (s *Survey) Close(now time.Time) error {
	if s.Status == StatusClosed {
		return ErrAlreadyClosed
	}
	s.Status = StatusClosed
	s.ClosedAt = now
	return nil
}

// ResultsVisible reports whether aggregated results may be shown for
// the given respondent count.
// INVARIANT: results below the privacy floor are never exposed
func (s *Survey) ResultsVisible(respondents int) bool {
	floor := s.MinRespondents
	if floor <= 0 {
		floor = DefaultMinRespondents
	}
	return respondents >= floor
}

// Validate checks a pulse response.
// PRE: Response struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Response) Validate() error {
	if r.Score < MinScore || r.Score > MaxScore {
		return ErrScoreOutOfRange
	}
	return nil
}
