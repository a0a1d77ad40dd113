package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AccountFinder is the slice of the store the identity provider needs.
type AccountFinder interface {
	FindIdentity(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByAccessToken(ctx context.Context, token string) (*Account, error)
}

// AccountProvider resolves identities for inbound requests: by primary id,
// by username + password, or by bearer access token. Only active accounts
// resolve; everything else is reported as not found or as a credential
// mismatch, never distinguished for the caller.
type AccountProvider struct {
	store   AccountFinder
	machine *StateMachine
	logger  Logger
}

// NewAccountProvider builds a provider around the store. Password checks
// go through the state machine so every attempt is audited.
func NewAccountProvider(store AccountFinder, machine *StateMachine) *AccountProvider {
	return &AccountProvider{
		store:   store,
		machine: machine,
		logger:  defLogger{},
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity finds the account, audits the password attempt, and
// returns the identity. A missing account and a wrong password are
// indistinguishable to the caller.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	acct, err := p.store.FindByUsername(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during verification")
	}

	ok, err := p.machine.ValidatePassword(ctx, acct, password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromAccount(acct), nil
}

// FindIdentity resolves an active account by its primary id.
func (p *AccountProvider) FindIdentity(ctx context.Context, id string) (Identity, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAccountNotFound.WithMetadata(map[string]any{
			"id": id,
		})
	}

	acct, err := p.store.FindIdentity(ctx, uid)
	if err != nil {
		return nil, err
	}

	return NewIdentityFromAccount(acct), nil
}

// FindIdentityByAccessToken resolves an active account by its bearer
// access token.
func (p *AccountProvider) FindIdentityByAccessToken(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}

	acct, err := p.store.FindByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return NewIdentityFromAccount(acct), nil
}

var _ IdentityProvider = (*AccountProvider)(nil)

// AccountIdentity adapts an Account into the Identity interface.
type AccountIdentity struct {
	account *Account
}

// NewIdentityFromAccount returns an Identity adapter for the provided account.
func NewIdentityFromAccount(a *Account) Identity {
	if a == nil {
		return nil
	}
	return AccountIdentity{account: a}
}

// ID returns the account id as a string.
func (i AccountIdentity) ID() string {
	if i.account == nil {
		return ""
	}
	return i.account.ID.String()
}

// Username returns the account's username.
func (i AccountIdentity) Username() string {
	if i.account == nil {
		return ""
	}
	return i.account.Username
}

// Email returns the account's email address.
func (i AccountIdentity) Email() string {
	if i.account == nil {
		return ""
	}
	return i.account.Email
}

// Services returns a copy of the account's entitlement set.
func (i AccountIdentity) Services() []string {
	if i.account == nil || len(i.account.Services) == 0 {
		return nil
	}
	return append([]string(nil), i.account.Services...)
}

// AccessToken exposes the bearer credential for API responses.
func (i AccountIdentity) AccessToken() string {
	if i.account == nil {
		return ""
	}
	return i.account.AccessToken
}

// Status returns the account's lifecycle status.
func (i AccountIdentity) Status() AccountStatus {
	if i.account == nil {
		return StatusDeleted
	}
	return i.account.Status
}
