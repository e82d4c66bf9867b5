package microcheck

import (
	"testing"
	"time"
)

// TestTemplate_Validate verifies required template fields.
func TestTemplate_Validate(t *testing.T) {
	tmpl := Template{Name: "Opening line check", Items: []TemplateItem{{ID: "i1", Prompt: "Walk-in fridge below 4°C", Position: 1}}}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}

	empty := Template{Name: "Opening line check"}
	if err := empty.Validate(); err != ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}

	blank := Template{Name: "Opening", Items: []TemplateItem{{Prompt: "  "}}}
	if err := blank.Validate(); err != ErrEmptyPrompt {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

// TestRun_Validate verifies channel and assignee contact checks.
func TestRun_Validate(t *testing.T) {
	r := Run{LocationID: "loc1", Channel: ChannelEmail, AssigneeEmail: "gm@diner.example"}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected valid run, got %v", err)
	}

	sms := Run{LocationID: "loc1", Channel: ChannelSMS}
	if err := sms.Validate(); err != ErrEmptyAssignee {
		t.Fatalf("expected ErrEmptyAssignee, got %v", err)
	}

	bad := Run{LocationID: "loc1", Channel: "carrier_pigeon"}
	if err := bad.Validate(); err != ErrInvalidChannel {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}

// TestRun_Lifecycle walks scheduled -> sent -> started -> completed.
func TestRun_Lifecycle(t *testing.T) {
	now := time.Now()
	r := Run{LocationID: "loc1", Channel: ChannelEmail, AssigneeEmail: "gm@diner.example", Status: RunStatusScheduled}

	r.MarkSent(now)
	if r.Status != RunStatusSent || r.SentAt.IsZero() {
		t.Fatalf("expected sent status with timestamp")
	}

	if err := r.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Complete(now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := r.Complete(now); err != ErrRunAlreadyDone {
		t.Fatalf("expected ErrRunAlreadyDone, got %v", err)
	}
	if r.IsOpen() {
		t.Fatalf("completed run should not be open")
	}
}

// TestRun_CompleteRequiresStart verifies completion is rejected before
// the assignee opens the link.
func TestRun_CompleteRequiresStart(t *testing.T) {
	r := Run{Status: RunStatusSent}
	if err := r.Complete(time.Now()); err != ErrRunNotOpen {
		t.Fatalf("expected ErrRunNotOpen, got %v", err)
	}
}

// TestMagicToken_Redeem verifies single-use and expiry semantics.
func TestMagicToken_Redeem(t *testing.T) {
	now := time.Now()
	mt := MagicToken{Token: "abc", ExpiresAt: now.Add(time.Hour)}

	if err := mt.Redeem(now); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if err := mt.Redeem(now); err != ErrTokenUsed {
		t.Fatalf("expected ErrTokenUsed, got %v", err)
	}

	expired := MagicToken{Token: "def", ExpiresAt: now.Add(-time.Minute)}
	if err := expired.Redeem(now); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if expired.Used {
		t.Fatalf("failed redeem must not consume the token")
	}
}

// TestResponse_Validate verifies the result enum.
func TestResponse_Validate(t *testing.T) {
	for _, result := range []string{ResultPass, ResultFail, ResultNA} {
		resp := Response{Result: result}
		if err := resp.Validate(); err != nil {
			t.Fatalf("result %q: %v", result, err)
		}
	}
	bad := Response{Result: "maybe"}
	if err := bad.Validate(); err != ErrInvalidResult {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
}
