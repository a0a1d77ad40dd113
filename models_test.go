package account_test

import (
	"strings"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStatus(t *testing.T) {
	assert.True(t, account.StatusActive.IsValid())
	assert.True(t, account.StatusInactive.IsValid())
	assert.True(t, account.StatusDeleted.IsValid())
	assert.False(t, account.AccountStatus(3).IsValid())

	assert.Equal(t, "active", account.StatusActive.String())
	assert.Equal(t, "inactive", account.StatusInactive.String())
	assert.Equal(t, "deleted", account.StatusDeleted.String())
	assert.Equal(t, "unknown", account.AccountStatus(3).String())
}

func TestAccountHasService(t *testing.T) {
	tests := []struct {
		name     string
		services []string
		service  string
		expected bool
	}{
		{"direct membership", []string{"billing", "reporting"}, "billing", true},
		{"wildcard grants anything", []string{account.ServiceFullAccess}, "billing", true},
		{"no entitlement", []string{"reporting"}, "billing", false},
		{"empty list", nil, "billing", false},
		{"case sensitive", []string{"Billing"}, "billing", false},
		{"duplicates tolerated", []string{"billing", "billing"}, "billing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{Services: tt.services}
			assert.Equal(t, tt.expected, a.HasService(tt.service))
		})
	}
}

func TestAccountAddRemoveService(t *testing.T) {
	a := &account.Account{}

	assert.True(t, a.AddService("billing"))
	assert.False(t, a.AddService("billing"))
	assert.Equal(t, []string{"billing"}, a.Services)

	assert.True(t, a.RemoveService("billing"))
	assert.False(t, a.RemoveService("billing"))
	assert.Empty(t, a.Services)
}

func TestAccountRemoveService_Duplicates(t *testing.T) {
	a := &account.Account{Services: []string{"billing", "reporting", "billing"}}

	assert.True(t, a.RemoveService("billing"))
	assert.Equal(t, []string{"reporting"}, a.Services)
}

func TestAccountSetPassword(t *testing.T) {
	a := &account.Account{}
	require.NoError(t, a.SetPassword("s3cr3t-p4ss"))

	assert.NotEmpty(t, a.PasswordHash)
	assert.NotEqual(t, "s3cr3t-p4ss", a.PasswordHash)
	assert.NotContains(t, a.PasswordHash, "s3cr3t-p4ss")
}

func TestAccountValidateAuthKey(t *testing.T) {
	a := &account.Account{}
	assert.False(t, a.ValidateAuthKey(""))

	require.NoError(t, a.GenerateAuthKey())
	assert.True(t, a.ValidateAuthKey(a.AuthKey))
	assert.False(t, a.ValidateAuthKey("other"))
}

func TestAccountTokenGeneration(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := &account.Account{}

	require.NoError(t, a.GenerateAccessToken())
	assert.Len(t, a.AccessToken, 32)

	require.NoError(t, a.GeneratePasswordResetToken(now))
	assert.True(t, strings.HasSuffix(a.PasswordResetToken, "_1714564800"))

	require.NoError(t, a.GenerateEmailVerificationToken(now))
	issuedAt, ok := account.TokenIssuedAt(a.VerificationToken)
	require.True(t, ok)
	assert.True(t, issuedAt.Equal(now))

	a.RemovePasswordResetToken()
	a.RemoveVerificationToken()
	assert.Empty(t, a.PasswordResetToken)
	assert.Empty(t, a.VerificationToken)
}

func TestAccountStatusPredicates(t *testing.T) {
	a := &account.Account{Status: account.StatusActive}
	assert.True(t, a.IsActive())

	a.Status = account.StatusInactive
	assert.True(t, a.IsInactive())

	a.Status = account.StatusDeleted
	assert.True(t, a.IsDeleted())
}
