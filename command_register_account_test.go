package account_test

import (
	"context"
	"strings"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccountHandler(t *testing.T) {
	accounts := new(MockAccounts)
	accounts.On("Save", mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	repo := NewMockRepositoryManager(accounts)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	handler := account.NewRegisterAccountHandler(repo).WithClock(fixedClock(now))

	var created *account.Account
	err := handler.Execute(context.Background(), account.RegisterAccountMessage{
		Username: "pepe",
		Email:    "pepe@example.com",
		Password: "s3cr3t-p4ss",
		OnResponse: func(a *account.Account) {
			created = a
		},
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "pepe", created.Username)
	assert.Equal(t, "pepe@example.com", created.Email)
	assert.Equal(t, account.StatusInactive, created.Status)
	assert.Equal(t, 0, created.LoginAttempt)

	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "s3cr3t-p4ss", created.PasswordHash)
	assert.NotEmpty(t, created.AuthKey)
	assert.NotEmpty(t, created.AccessToken)
	assert.True(t, strings.HasSuffix(created.VerificationToken, "_1714564800"))

	accounts.AssertExpectations(t)
}

func TestRegisterAccountHandler_UsernameFromEmail(t *testing.T) {
	accounts := new(MockAccounts)
	accounts.On("Save", mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	handler := account.NewRegisterAccountHandler(NewMockRepositoryManager(accounts))

	var created *account.Account
	err := handler.Execute(context.Background(), account.RegisterAccountMessage{
		Email:    "pepe@example.com",
		Password: "s3cr3t-p4ss",
		OnResponse: func(a *account.Account) {
			created = a
		},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "pepe", created.Username)
}

func TestRegisterAccountMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		message account.RegisterAccountMessage
		wantErr bool
	}{
		{
			"valid",
			account.RegisterAccountMessage{Username: "pepe", Email: "pepe@example.com", Password: "s3cr3t-p4ss"},
			false,
		},
		{
			"empty username derived from email",
			account.RegisterAccountMessage{Email: "pepe@example.com", Password: "s3cr3t-p4ss"},
			false,
		},
		{
			"missing email",
			account.RegisterAccountMessage{Username: "pepe", Password: "s3cr3t-p4ss"},
			true,
		},
		{
			"bad email",
			account.RegisterAccountMessage{Username: "pepe", Email: "not-an-email", Password: "s3cr3t-p4ss"},
			true,
		},
		{
			"short password",
			account.RegisterAccountMessage{Username: "pepe", Email: "pepe@example.com", Password: "nope"},
			true,
		},
		{
			"short username",
			account.RegisterAccountMessage{Username: "p", Email: "pepe@example.com", Password: "s3cr3t-p4ss"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.message.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterAccountHandler_InvalidPayload(t *testing.T) {
	accounts := new(MockAccounts)
	handler := account.NewRegisterAccountHandler(NewMockRepositoryManager(accounts))

	err := handler.Execute(context.Background(), account.RegisterAccountMessage{
		Username: "pepe",
		Email:    "not-an-email",
		Password: "s3cr3t-p4ss",
	})
	assert.Error(t, err)
	accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterAccountHandler_CancelledContext(t *testing.T) {
	handler := account.NewRegisterAccountHandler(NewMockRepositoryManager(new(MockAccounts)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, account.RegisterAccountMessage{
		Username: "pepe",
		Email:    "pepe@example.com",
		Password: "s3cr3t-p4ss",
	})
	assert.Error(t, err)
}
