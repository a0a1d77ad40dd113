package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProvider(finder account.AccountFinder, saver account.AccountSaver) *account.AccountProvider {
	return account.NewAccountProvider(finder, account.NewStateMachine(saver))
}

func TestAccountProviderVerifyIdentity(t *testing.T) {
	id := uuid.New()
	acct := &account.Account{
		ID:           id,
		Username:     "pepe",
		Email:        "pepe@example.com",
		AccessToken:  "token-123",
		PasswordHash: testPasswordHash(t),
		Status:       account.StatusActive,
		Services:     []string{"billing"},
	}

	finder := new(MockFinder)
	finder.On("FindByUsername", mock.Anything, "pepe").
		Return(acct, nil).Once()

	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.Anything).
		Return(acct, nil).Once()

	provider := newTestProvider(finder, saver)

	identity, err := provider.VerifyIdentity(context.Background(), "pepe", testPassword)
	require.NoError(t, err)

	assert.Equal(t, id.String(), identity.ID())
	assert.Equal(t, "pepe", identity.Username())
	assert.Equal(t, "pepe@example.com", identity.Email())
	assert.Equal(t, []string{"billing"}, identity.Services())

	finder.AssertExpectations(t)
	saver.AssertExpectations(t)
}

func TestAccountProviderVerifyIdentity_WrongPassword(t *testing.T) {
	acct := &account.Account{
		Username:     "pepe",
		PasswordHash: testPasswordHash(t),
		Status:       account.StatusActive,
	}

	finder := new(MockFinder)
	finder.On("FindByUsername", mock.Anything, "pepe").
		Return(acct, nil).Once()

	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.Anything).
		Return(acct, nil).Once()

	provider := newTestProvider(finder, saver)

	identity, err := provider.VerifyIdentity(context.Background(), "pepe", "wrong-pass")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, account.ErrMismatchedHashAndPassword)
}

func TestAccountProviderVerifyIdentity_UnknownAccount(t *testing.T) {
	finder := new(MockFinder)
	finder.On("FindByUsername", mock.Anything, "ghost").
		Return(nil, account.ErrAccountNotFound).Once()

	provider := newTestProvider(finder, new(MockSaver))

	// an unknown username is indistinguishable from a wrong password
	identity, err := provider.VerifyIdentity(context.Background(), "ghost", "whatever")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, account.ErrMismatchedHashAndPassword)
}

func TestAccountProviderFindIdentity(t *testing.T) {
	id := uuid.New()
	acct := &account.Account{ID: id, Username: "pepe", Status: account.StatusActive}

	finder := new(MockFinder)
	finder.On("FindIdentity", mock.Anything, id).
		Return(acct, nil).Once()

	provider := newTestProvider(finder, new(MockSaver))

	identity, err := provider.FindIdentity(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "pepe", identity.Username())

	finder.AssertExpectations(t)
}

func TestAccountProviderFindIdentity_BadID(t *testing.T) {
	finder := new(MockFinder)
	provider := newTestProvider(finder, new(MockSaver))

	identity, err := provider.FindIdentity(context.Background(), "not-a-uuid")
	assert.Nil(t, identity)
	assert.True(t, account.IsNotFound(err))

	finder.AssertNotCalled(t, "FindIdentity", mock.Anything, mock.Anything)
}

func TestAccountProviderFindIdentityByAccessToken(t *testing.T) {
	acct := &account.Account{Username: "pepe", AccessToken: "token-123", Status: account.StatusActive}

	finder := new(MockFinder)
	finder.On("FindByAccessToken", mock.Anything, "token-123").
		Return(acct, nil).Once()

	provider := newTestProvider(finder, new(MockSaver))

	identity, err := provider.FindIdentityByAccessToken(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "pepe", identity.Username())
}

func TestAccountProviderFindIdentityByAccessToken_Empty(t *testing.T) {
	finder := new(MockFinder)
	provider := newTestProvider(finder, new(MockSaver))

	identity, err := provider.FindIdentityByAccessToken(context.Background(), "")
	assert.Nil(t, identity)
	assert.True(t, account.IsNotFound(err))

	finder.AssertNotCalled(t, "FindByAccessToken", mock.Anything, mock.Anything)
}
