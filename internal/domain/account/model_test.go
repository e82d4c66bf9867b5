package account

import (
	"testing"
	"time"
)

// TestAccount_Validate verifies email and role checks.
func TestAccount_Validate(t *testing.T) {
	a := Account{Email: "owner@diner.example", Role: RoleOwner}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid account, got %v", err)
	}

	badRole := Account{Email: "x@y.example", Role: "waiter"}
	if err := badRole.Validate(); err != ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	badEmail := Account{Email: "nope", Role: RoleGM}
	if err := badEmail.Validate(); err != ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

// TestAccount_PasswordRoundTrip verifies hashing and verification.
func TestAccount_PasswordRoundTrip(t *testing.T) {
	a := Account{Email: "gm@diner.example", Role: RoleGM}
	if err := a.SetPassword("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword("a long enough password"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := a.CheckPassword("a long enough password"); err != nil {
		t.Fatalf("check password: %v", err)
	}
	if err := a.CheckPassword("wrong password entirely"); err != ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

// TestAccount_Lockout verifies lockout after five failures.
func TestAccount_Lockout(t *testing.T) {
	a := Account{}
	for i := 0; i < 5; i++ {
		a.RecordFailedLogin()
	}
	if !a.IsLocked() {
		t.Fatalf("expected account locked after 5 failures")
	}
	a.ResetFailedLogins()
	if a.IsLocked() || a.FailedLogins != 0 {
		t.Fatalf("expected lock cleared")
	}
}

// TestAccount_UsageCounters verifies gating counters increment.
func TestAccount_UsageCounters(t *testing.T) {
	a := Account{}
	a.RecordCheckCompleted()
	a.RecordCheckCompleted()
	a.RecordVideoWatched()
	if a.ChecksCompleted != 2 || a.VideosWatched != 1 {
		t.Fatalf("counters = %d/%d, want 2/1", a.ChecksCompleted, a.VideosWatched)
	}
}

// TestActivationToken verifies expiry and invalidation.
func TestActivationToken(t *testing.T) {
	now := time.Now()
	tok := ActivationToken{Token: "t", ExpiresAt: now.Add(time.Hour)}
	if tok.IsExpired(now) {
		t.Fatalf("token should not be expired")
	}
	if !tok.IsExpired(now.Add(2 * time.Hour)) {
		t.Fatalf("token should be expired")
	}
	tok.Invalidate()
	if !tok.Used {
		t.Fatalf("token should be marked used")
	}
}

// TestAccount_Activate verifies the pending -> active transition.
func TestAccount_Activate(t *testing.T) {
	a := Account{Status: StatusPendingActivation}
	if err := a.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := a.Activate(); err != ErrAlreadyActivated {
		t.Fatalf("expected ErrAlreadyActivated, got %v", err)
	}
}
