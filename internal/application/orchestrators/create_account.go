package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/adapters/email"
	"linecheck/internal/domain/account"
)

// ActivationTokenTTL is how long an invite link stays usable.
const ActivationTokenTTL = 7 * 24 * time.Hour

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// TokenStoreForCreate defines the token store interface needed by CreateAccount.
type TokenStoreForCreate interface {
	Save(ctx context.Context, t account.ActivationToken) error
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email   string
	Name    string
	Role    string
	IsTrial bool
	BaseURL string // used to build the activation link
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	TokenStore   TokenStoreForCreate
	EmailSender  email.Sender // nil skips the invite email
	EmailFrom    string
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount invites a new account. The account starts in
// pending_activation; the invitee sets their password via the emailed
// activation link.
// PRE: Valid email and role
// POST: Pending account and activation token created; invite email queued
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Email == "" {
		return "", errors.New("email cannot be empty")
	}
	if input.Role == "" {
		return "", errors.New("role cannot be empty")
	}

	// Check if email already exists
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Status:    account.StatusPendingActivation,
		IsTrial:   input.IsTrial,
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	tokenValue, err := generateActivationToken()
	if err != nil {
		return "", err
	}
	token := account.ActivationToken{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(ActivationTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := deps.TokenStore.Save(ctx, token); err != nil {
		return "", err
	}

	if deps.EmailSender != nil {
		link := input.BaseURL + "/activate/" + tokenValue
		_, err := deps.EmailSender.Send(ctx, email.SendRequest{
			To:      []string{acct.Email},
			From:    deps.EmailFrom,
			Subject: "You've been invited to LineCheck",
			HTML: fmt.Sprintf(`<p>Hi %s,</p><p>You've been invited to LineCheck. Set your password to get started:</p><p><a href="%s">%s</a></p><p>The link expires in 7 days.</p>`,
				acct.Name, link, link),
		})
		if err != nil {
			// The account exists either way; the admin can resend.
			slog.Error("invite_email_failed", "email", acct.Email, "error", err)
		}
	}

	slog.Info("auth_event", "event", "account_invited", "email", input.Email, "role", input.Role)
	return acct.ID, nil
}

// TokenStoreForActivate defines the token store interface needed by ActivateAccount.
type TokenStoreForActivate interface {
	GetByToken(ctx context.Context, token string) (account.ActivationToken, error)
	Save(ctx context.Context, t account.ActivationToken) error
}

// AccountStoreForActivate defines the store interface needed by ActivateAccount.
type AccountStoreForActivate interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ActivateAccountInput carries input for account activation.
type ActivateAccountInput struct {
	Token    string
	Password string
}

// ActivateAccountDeps holds dependencies for ActivateAccount.
type ActivateAccountDeps struct {
	AccountStore AccountStoreForActivate
	TokenStore   TokenStoreForActivate
}

// ExecuteActivateAccount sets the invitee's password and activates the account.
// PRE: Token is valid, unused and unexpired; password >= 12 chars
// POST: Account is active with the new password; token is consumed
func ExecuteActivateAccount(ctx context.Context, input ActivateAccountInput, deps ActivateAccountDeps) error {
	token, err := deps.TokenStore.GetByToken(ctx, input.Token)
	if err != nil {
		return account.ErrTokenInvalid
	}
	if token.Used {
		return account.ErrTokenInvalid
	}
	if token.IsExpired(time.Now()) {
		return account.ErrTokenExpired
	}

	acct, err := deps.AccountStore.GetByID(ctx, token.AccountID)
	if err != nil {
		return err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return err
	}
	if err := acct.Activate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	token.Invalidate()
	if err := deps.TokenStore.Save(ctx, token); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "account_activated", "email", acct.Email)
	return nil
}

func generateActivationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
