package account_test

import (
	"context"
	"database/sql"
	"time"

	account "github.com/goliatone/go-account"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockSaver implements account.AccountSaver
type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save(ctx context.Context, a *account.Account) (*account.Account, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

// MockActivitySink implements account.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event account.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// recordingSink collects events in order without testify ceremony.
type recordingSink struct {
	events []account.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event account.ActivityEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) types() []account.ActivityEventType {
	out := make([]account.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

// MockNotificationSink implements account.NotificationSink
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Send(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// MockFinder implements account.AccountFinder
type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) FindIdentity(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockFinder) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockFinder) FindByAccessToken(ctx context.Context, token string) (*account.Account, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

// MockAccounts mocks the subset of account.Accounts the command handlers
// touch. The embedded repository interface covers the rest; calling an
// unimplemented method panics, which is the failure we want in tests.
type MockAccounts struct {
	mock.Mock
	repository.Repository[*account.Account]
}

func (m *MockAccounts) FindIdentity(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) FindIdentityTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*account.Account, error) {
	return m.FindIdentity(ctx, id)
}

func (m *MockAccounts) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*account.Account, error) {
	return m.FindByUsername(ctx, username)
}

func (m *MockAccounts) FindByAccessToken(ctx context.Context, token string) (*account.Account, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) FindByAccessTokenTx(ctx context.Context, tx bun.IDB, token string) (*account.Account, error) {
	return m.FindByAccessToken(ctx, token)
}

func (m *MockAccounts) FindByPasswordResetToken(ctx context.Context, token string, ttl time.Duration) (*account.Account, error) {
	args := m.Called(ctx, token, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) FindByPasswordResetTokenTx(ctx context.Context, tx bun.IDB, token string, ttl time.Duration) (*account.Account, error) {
	return m.FindByPasswordResetToken(ctx, token, ttl)
}

func (m *MockAccounts) FindByVerificationToken(ctx context.Context, token string) (*account.Account, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*account.Account, error) {
	return m.FindByVerificationToken(ctx, token)
}

func (m *MockAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

// Save echoes the input record when the test returns (nil, nil), matching
// the passthrough behavior of the real store.
func (m *MockAccounts) Save(ctx context.Context, record *account.Account) (*account.Account, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return record, nil
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccounts) SaveTx(ctx context.Context, tx bun.IDB, record *account.Account) (*account.Account, error) {
	return m.Save(ctx, record)
}

func (m *MockAccounts) ListByService(ctx context.Context, serviceID string) ([]*account.Account, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccounts) All(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

// MockRepositoryManager implements account.RepositoryManager, running tx
// bodies against a zero-value bun.Tx the mocks never touch.
type MockRepositoryManager struct {
	accounts account.Accounts
}

func NewMockRepositoryManager(accounts account.Accounts) *MockRepositoryManager {
	return &MockRepositoryManager{accounts: accounts}
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Accounts() account.Accounts {
	return m.accounts
}
