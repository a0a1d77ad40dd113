package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// InitializePasswordResetMessage mints a fresh timestamped reset token for
// the account holding the given username.
type InitializePasswordResetMessage struct {
	Username string `json:"username"`
	// OnResponse receives the issued token. The token reaches the user
	// out of band; this subsystem never delivers email.
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Token   string
	Found   bool
	Success bool
}

type InitializePasswordResetHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (h *InitializePasswordResetHandler) WithClock(clock func() time.Time) *InitializePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acct, err := h.repo.Accounts().FindByUsernameTx(ctx, tx, event.Username)
		if err != nil {
			// a missing account is part of the expected flow, not an
			// application error: callers must not learn whether the
			// username exists
			if IsNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		resp.Found = true

		if err := acct.GeneratePasswordResetToken(h.now()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate password reset token")
		}

		if _, err := h.repo.Accounts().SaveTx(ctx, tx, acct); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset token")
		}

		resp.Token = acct.PasswordResetToken
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

// FinalizePasswordResetMessage consumes a reset token: sets the new
// password and clears the token. An expired token behaves like an unknown
// one.
type FinalizePasswordResetMessage struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "account.password_reset.finalize" }

type FinalizePasswordResetHandler struct {
	repo     RepositoryManager
	tokenTTL time.Duration
	activity ActivitySink
	logger   Logger
}

// NewFinalizePasswordResetHandlerFromConfig creates a handler bounding
// token age by the configured reset token TTL.
func NewFinalizePasswordResetHandlerFromConfig(repo RepositoryManager, opts Config) *FinalizePasswordResetHandler {
	return NewFinalizePasswordResetHandler(repo, time.Duration(opts.GetPasswordResetTokenTTL())*time.Second)
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
// tokenTTL bounds how old a reset token may be.
func NewFinalizePasswordResetHandler(repo RepositoryManager, tokenTTL time.Duration) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:     repo,
		tokenTTL: tokenTTL,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if event.Password == "" {
		return goerrors.New("password is required", goerrors.CategoryValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acct, err := h.repo.Accounts().FindByPasswordResetTokenTx(ctx, tx, event.Token, h.tokenTTL)
		if err != nil {
			if IsNotFound(err) {
				return ErrAccountNotFound.WithMetadata(map[string]any{
					"reason": "unknown or expired reset token",
				})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		if err := acct.SetPassword(event.Password); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		acct.RemovePasswordResetToken()

		if _, err := h.repo.Accounts().SaveTx(ctx, tx, acct); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store new password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	return nil
}
