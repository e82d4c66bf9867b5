package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/adapters/email"
	"linecheck/internal/domain/lead"
)

// LeadStoreForWrite defines the store interface needed by CaptureLead.
type LeadStoreForWrite interface {
	Save(ctx context.Context, l lead.Lead) error
}

// CaptureLeadInput carries one marketing-site form submission.
type CaptureLeadInput struct {
	Name           string
	Email          string
	RestaurantName string
	LocationCount  int
	Message        string
	Source         string
}

// CaptureLeadDeps holds dependencies for CaptureLead.
type CaptureLeadDeps struct {
	LeadStore   LeadStoreForWrite
	EmailSender email.Sender // nil skips the notification
	EmailFrom   string
	NotifyEmail string // where new-lead notifications go
}

// ExecuteCaptureLead stores a lead and notifies the sales inbox. The
// notification is best-effort; the lead is kept either way.
// PRE: Input has a plausible email
// POST: Lead persisted; notification attempted when configured
func ExecuteCaptureLead(ctx context.Context, input CaptureLeadInput, deps CaptureLeadDeps) (string, error) {
	l := lead.Lead{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Email:          input.Email,
		RestaurantName: input.RestaurantName,
		LocationCount:  input.LocationCount,
		Message:        input.Message,
		Source:         input.Source,
		CreatedAt:      time.Now(),
	}
	if err := l.Validate(); err != nil {
		return "", err
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return "", err
	}

	if deps.EmailSender != nil && deps.NotifyEmail != "" {
		_, err := deps.EmailSender.Send(ctx, email.SendRequest{
			To:      []string{deps.NotifyEmail},
			From:    deps.EmailFrom,
			Subject: "New lead: " + l.Email,
			HTML: fmt.Sprintf(
				`<p><strong>%s</strong> (%s)</p><p>Restaurant: %s (%d locations)</p><p>Source: %s</p><p>%s</p>`,
				html.EscapeString(l.Name), html.EscapeString(l.Email),
				html.EscapeString(l.RestaurantName), l.LocationCount,
				html.EscapeString(l.Source), html.EscapeString(l.Message)),
			ReplyTo: l.Email,
		})
		if err != nil {
			slog.Error("lead_notify_failed", "lead_id", l.ID, "error", err)
		}
	}

	slog.Info("lead_event", "event", "lead_captured", "lead_id", l.ID, "source", l.Source)
	return l.ID, nil
}
