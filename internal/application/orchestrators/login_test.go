package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"linecheck/internal/domain/account"
)

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	byEmail map[string]account.Account
	byID    map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		byEmail: make(map[string]account.Account),
		byID:    make(map[string]account.Account),
	}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) List(_ context.Context) ([]account.Account, error) {
	out := []account.Account{}
	for _, a := range m.byID {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.byEmail[a.Email] = a
	m.byID[a.ID] = a
	return nil
}

func seedActiveAccount(t *testing.T, store *mockAccountStore, email, password, role string) account.Account {
	t.Helper()
	acct := account.Account{
		ID:        "acct-" + role,
		Email:     email,
		Role:      role,
		Status:    account.StatusActive,
		CreatedAt: time.Now(),
	}
	if err := acct.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := store.Save(context.Background(), acct); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return acct
}

// TestExecuteLogin_Success verifies a valid login returns the account info.
func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	seedActiveAccount(t, store, "owner@example.com", "correct-horse-battery", account.RoleOwner)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "owner@example.com",
		Password: "correct-horse-battery",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Role != account.RoleOwner {
		t.Errorf("Role = %q, want owner", result.Role)
	}
	if result.AccountID == "" {
		t.Error("AccountID is empty")
	}
}

// TestExecuteLogin_WrongPassword verifies failed attempts are recorded.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedActiveAccount(t, store, "owner@example.com", "correct-horse-battery", account.RoleOwner)

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "owner@example.com",
		Password: "wrong-password-here",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	saved := store.byEmail["owner@example.com"]
	if saved.FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", saved.FailedLogins)
	}
}

// TestExecuteLogin_LockoutAfterFiveFailures verifies the lockout kicks in.
func TestExecuteLogin_LockoutAfterFiveFailures(t *testing.T) {
	store := newMockAccountStore()
	seedActiveAccount(t, store, "owner@example.com", "correct-horse-battery", account.RoleOwner)

	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "owner@example.com",
			Password: "wrong-password-here",
		}, LoginDeps{AccountStore: store})
	}

	// Even the correct password is now rejected.
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "owner@example.com",
		Password: "correct-horse-battery",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
}

// TestExecuteLogin_PendingActivationBlocked verifies invited-but-unactivated
// accounts cannot log in.
func TestExecuteLogin_PendingActivationBlocked(t *testing.T) {
	store := newMockAccountStore()
	acct := account.Account{
		ID:     "acct-pending",
		Email:  "new@example.com",
		Role:   account.RoleGM,
		Status: account.StatusPendingActivation,
	}
	_ = acct.SetPassword("some-password-12ch")
	_ = store.Save(context.Background(), acct)

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "new@example.com",
		Password: "some-password-12ch",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrPendingActivation) {
		t.Fatalf("err = %v, want ErrPendingActivation", err)
	}
}

// TestExecuteActivateAccount_RoundTrip verifies the invite-activate flow.
func TestExecuteActivateAccount_RoundTrip(t *testing.T) {
	store := newMockAccountStore()
	tokens := newMockActivationTokenStore()

	id, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email: "invitee@example.com",
		Name:  "Invitee",
		Role:  account.RoleGM,
	}, CreateAccountDeps{AccountStore: store, TokenStore: tokens})
	if err != nil {
		t.Fatalf("ExecuteCreateAccount: %v", err)
	}

	if len(tokens.byToken) != 1 {
		t.Fatalf("token count = %d, want 1", len(tokens.byToken))
	}
	var tokenValue string
	for v := range tokens.byToken {
		tokenValue = v
	}

	err = ExecuteActivateAccount(context.Background(), ActivateAccountInput{
		Token:    tokenValue,
		Password: "fresh-password-12",
	}, ActivateAccountDeps{AccountStore: store, TokenStore: tokens})
	if err != nil {
		t.Fatalf("ExecuteActivateAccount: %v", err)
	}

	acct := store.byID[id]
	if acct.Status != account.StatusActive {
		t.Errorf("Status = %q, want active", acct.Status)
	}
	if err := acct.CheckPassword("fresh-password-12"); err != nil {
		t.Error("new password does not verify")
	}

	// Token is single-use.
	err = ExecuteActivateAccount(context.Background(), ActivateAccountInput{
		Token:    tokenValue,
		Password: "another-password-12",
	}, ActivateAccountDeps{AccountStore: store, TokenStore: tokens})
	if !errors.Is(err, account.ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

// TestExecuteCreateAccount_DuplicateEmail verifies uniqueness is enforced.
func TestExecuteCreateAccount_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	tokens := newMockActivationTokenStore()
	seedActiveAccount(t, store, "taken@example.com", "correct-horse-battery", account.RoleOwner)

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email: "taken@example.com",
		Role:  account.RoleGM,
	}, CreateAccountDeps{AccountStore: store, TokenStore: tokens})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

// mockActivationTokenStore implements the activation token store interfaces.
type mockActivationTokenStore struct {
	byToken map[string]account.ActivationToken
}

func newMockActivationTokenStore() *mockActivationTokenStore {
	return &mockActivationTokenStore{byToken: make(map[string]account.ActivationToken)}
}

func (m *mockActivationTokenStore) GetByToken(_ context.Context, token string) (account.ActivationToken, error) {
	t, ok := m.byToken[token]
	if !ok {
		return account.ActivationToken{}, errors.New("not found")
	}
	return t, nil
}

func (m *mockActivationTokenStore) Save(_ context.Context, t account.ActivationToken) error {
	m.byToken[t.Token] = t
	return nil
}
