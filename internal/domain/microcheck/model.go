// Package microcheck models line checks: short operational checklists a
// manager completes on the floor, delivered by email/SMS magic link.
package microcheck

import (
	"errors"
	"strings"
	"time"
)

// Run status constants.
const (
	RunStatusScheduled = "scheduled"
	RunStatusSent      = "sent"
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusExpired   = "expired"
)

// Item result constants.
const (
	ResultPass = "pass"
	ResultFail = "fail"
	ResultNA   = "na"
)

// Delivery channel constants.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// MagicTokenTTL is how long a run's magic link stays usable.
const MagicTokenTTL = 48 * time.Hour

// Domain errors
var (
	ErrEmptyTemplateName = errors.New("template name is required")
	ErrNoItems           = errors.New("template needs at least one item")
	ErrEmptyPrompt       = errors.New("item prompt is required")
	ErrEmptyLocation     = errors.New("run location is required")
	ErrEmptyAssignee     = errors.New("run assignee contact is required")
	ErrInvalidChannel    = errors.New("channel must be email or sms")
	ErrRunNotOpen        = errors.New("run is not open for responses")
	ErrRunAlreadyDone    = errors.New("run is already completed")
	ErrInvalidResult     = errors.New("result must be pass, fail or na")
	ErrTokenExpired      = errors.New("check link has expired")
	ErrTokenUsed         = errors.New("check link has already been used")
)

// Template is a named checklist. Items are ordered by Position.
type Template struct {
	ID        string
	Name      string
	Items     []TemplateItem
	CreatedBy string
	CreatedAt time.Time
}

// TemplateItem is one prompt within a template.
type TemplateItem struct {
	ID            string
	Prompt        string
	Position      int
	RequiresPhoto bool
}

// Run is one delivery of a template to an assignee at a location,
// either scheduled by the distribution engine or created instantly.
type Run struct {
	ID            string
	TemplateID    string
	LocationID    string
	AssigneeEmail string
	AssigneePhone string
	Channel       string // email, sms
	Status        string
	ScheduledAt   time.Time
	SentAt        time.Time
	StartedAt     time.Time
	CompletedAt   time.Time
	CreatedAt     time.Time
}

// MagicToken is the single-use, expiring token behind /check/{token}.
// The route it guards bypasses session authentication.
type MagicToken struct {
	ID        string
	RunID     string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Response is one item answer within a run.
type Response struct {
	ID          string
	RunID       string
	ItemID      string
	Result      string // pass, fail, na
	Note        string
	SubmittedAt time.Time
}

// Validate checks required fields for a Template.
// PRE: Template struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTemplateName
	}
	if len(t.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range t.Items {
		if strings.TrimSpace(item.Prompt) == "" {
			return ErrEmptyPrompt
		}
	}
	return nil
}

// Validate checks required fields for a Run.
// PRE: Run struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Run) Validate() error {
	if r.LocationID == "" {
		return ErrEmptyLocation
	}
	if r.Channel != ChannelEmail && r.Channel != ChannelSMS {
		return ErrInvalidChannel
	}
	if r.Channel == ChannelEmail && r.AssigneeEmail == "" {
		return ErrEmptyAssignee
	}
	if r.Channel == ChannelSMS && r.AssigneePhone == "" {
		return ErrEmptyAssignee
	}
	return nil
}

// MarkSent records delivery of the magic link.
// PRE: Run is scheduled
// POST: Status is sent, SentAt set
func (r *Run) MarkSent(now time.Time) {
	r.Status = RunStatusSent
	r.SentAt = now
}

// Start transitions the run when the assignee opens the link.
// PRE: Run is sent or scheduled
// POST: Status is started, StartedAt set
func (r *Run) Start(now time.Time) error {
	if r.Status == RunStatusCompleted {
		return ErrRunAlreadyDone
	}
	if r.Status == RunStatusExpired {
		return ErrRunNotOpen
	}
	if r.Status != RunStatusStarted {
		r.Status = RunStatusStarted
		r.StartedAt = now
	}
	return nil
}

// Complete finishes the run once every item has an answer.
// PRE: Run is started
// POST: Status is completed, CompletedAt set
func (r *Run) Complete(now time.Time) error {
	if r.Status == RunStatusCompleted {
		return ErrRunAlreadyDone
	}
	if r.Status != RunStatusStarted {
		return ErrRunNotOpen
	}
	r.Status = RunStatusCompleted
	r.CompletedAt = now
	return nil
}

// IsOpen returns true while the run can still accept responses.
// INVARIANT: Run fields are not mutated
func (r *Run) IsOpen() bool {
	return r.Status == RunStatusSent || r.Status == RunStatusStarted || r.Status == RunStatusScheduled
}

// Validate checks a single item response.
// PRE: Response struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (resp *Response) Validate() error {
	if resp.Result != ResultPass && resp.Result != ResultFail && resp.Result != ResultNA {
		return ErrInvalidResult
	}
	return nil
}

// IsExpired returns true if the magic token has expired.
// INVARIANT: Token fields are not mutated
func (mt *MagicToken) IsExpired(now time.Time) bool {
	return now.After(mt.ExpiresAt)
}

// Redeem validates and consumes the token.
// PRE: Token exists
// POST: Used is true on success; token state unchanged on error
func (mt *MagicToken) Redeem(now time.Time) error {
	if mt.Used {
		return ErrTokenUsed
	}
	if mt.IsExpired(now) {
		return ErrTokenExpired
	}
	mt.Used = true
	return nil
}
