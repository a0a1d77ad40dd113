package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AccountVerificationRequestMessage re-issues a verification token for an
// inactive account, e.g. when the original email never arrived.
type AccountVerificationRequestMessage struct {
	Token string `json:"token"`
	// OnResponse receives the fresh token.
	OnResponse func(resp *AccountVerificationRequestResponse)
}

func (m AccountVerificationRequestMessage) Type() string { return "account.verification.request" }

type AccountVerificationRequestResponse struct {
	Token string
	Found bool
}

type AccountVerificationRequestHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewAccountVerificationRequestHandler creates a handler with sane defaults.
func NewAccountVerificationRequestHandler(repo RepositoryManager) *AccountVerificationRequestHandler {
	return &AccountVerificationRequestHandler{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (h *AccountVerificationRequestHandler) WithClock(clock func() time.Time) *AccountVerificationRequestHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *AccountVerificationRequestHandler) Execute(ctx context.Context, event AccountVerificationRequestMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *AccountVerificationRequestHandler) execute(ctx context.Context, event AccountVerificationRequestMessage) error {
	resp := &AccountVerificationRequestResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acct, err := h.repo.Accounts().FindByVerificationTokenTx(ctx, tx, event.Token)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification request")
		}

		resp.Found = true

		if err := acct.GenerateEmailVerificationToken(h.now()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification token")
		}

		if _, err := h.repo.Accounts().SaveTx(ctx, tx, acct); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification token")
		}

		resp.Token = acct.VerificationToken
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute verification request")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

// ConfirmVerificationMessage consumes a verification token: the matching
// inactive account is activated and the token cleared.
type ConfirmVerificationMessage struct {
	Token string `json:"token"`
	// OnResponse receives the activated account.
	OnResponse func(a *Account)
}

func (m ConfirmVerificationMessage) Type() string { return "account.verification.confirm" }

type ConfirmVerificationHandler struct {
	repo    RepositoryManager
	machine *StateMachine
}

// NewConfirmVerificationHandler creates a handler activating accounts
// through the given state machine so the transition is audited.
func NewConfirmVerificationHandler(repo RepositoryManager, machine *StateMachine) *ConfirmVerificationHandler {
	return &ConfirmVerificationHandler{
		repo:    repo,
		machine: machine,
	}
}

func (h *ConfirmVerificationHandler) Execute(ctx context.Context, event ConfirmVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification confirmation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmVerificationHandler) execute(ctx context.Context, event ConfirmVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	acct, err := h.repo.Accounts().FindByVerificationToken(ctx, event.Token)
	if err != nil {
		if IsNotFound(err) {
			return ErrAccountNotFound.WithMetadata(map[string]any{
				"reason": "unknown verification token",
			})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
	}

	acct.RemoveVerificationToken()

	// Activate persists through the state machine store and emits the
	// activation event.
	if err := h.machine.Activate(ctx, acct); err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(acct)
	}

	return nil
}
