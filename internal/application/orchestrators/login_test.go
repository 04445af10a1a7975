package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/domain/account"
)

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	accounts map[string]account.Account // keyed by email
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

// GetByEmail implements AccountStoreForLogin.
// PRE: email is non-empty
// POST: returns account or error
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

// GetByID implements AccountStoreForChangePassword.
// PRE: id is non-empty
// POST: returns account or error
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

// Save implements AccountStoreForLogin.
// PRE: account is valid
// POST: account is persisted
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.Email] = a
	return nil
}

// Count implements AccountStoreForCreate.
// PRE: none
// POST: returns number of stored accounts
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func seedAccount(t *testing.T, store *mockAccountStore, email, password string) account.Account {
	t.Helper()
	a := account.Account{ID: "acct-1", Email: email, Role: account.RoleAdmin, CreatedAt: time.Now()}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	store.accounts[email] = a
	return a
}

// TestExecuteLogin_Success verifies a valid login resets failed attempts.
func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "admin@gym.test", "correct horse battery")
	store.accounts["admin@gym.test"] = func(a account.Account) account.Account {
		a.FailedLogins = 3
		return a
	}(store.accounts["admin@gym.test"])

	res, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "admin@gym.test",
		Password: "correct horse battery",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AccountID != "acct-1" || res.Role != account.RoleAdmin {
		t.Errorf("unexpected result: %+v", res)
	}
	if store.accounts["admin@gym.test"].FailedLogins != 0 {
		t.Error("expected failed logins to reset on success")
	}
}

// TestExecuteLogin_WrongPassword verifies the failure is recorded and masked.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "admin@gym.test", "correct horse battery")

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "admin@gym.test",
		Password: "wrong password!!",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.accounts["admin@gym.test"].FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", store.accounts["admin@gym.test"].FailedLogins)
	}
}

// TestExecuteLogin_UnknownEmail verifies unknown emails get the same error.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@gym.test",
		Password: "whatever works",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestExecuteLogin_Locked verifies a locked account is refused outright.
func TestExecuteLogin_Locked(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "admin@gym.test", "correct horse battery")
	a.LockedUntil = time.Now().Add(10 * time.Minute)
	store.accounts[a.Email] = a

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "admin@gym.test",
		Password: "correct horse battery",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

// TestExecuteSeedAdmin verifies seeding is idempotent.
func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}

	if err := ExecuteSeedAdmin(context.Background(), deps, "admin@gym.test", "a long admin password"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(store.accounts))
	}
	seeded := store.accounts["admin@gym.test"]
	if !seeded.IsAdmin() {
		t.Error("seeded account should be admin")
	}

	// Second run must not create or overwrite anything
	if err := ExecuteSeedAdmin(context.Background(), deps, "other@gym.test", "another long password"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts = %d after reseed, want 1", len(store.accounts))
	}
}
