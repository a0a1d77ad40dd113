package account

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries a signup request. New accounts start
// inactive with a fresh auth key, access token and email verification
// token; activation happens when the verification token is consumed.
type RegisterAccountMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
	// OnResponse receives the created account on success.
	OnResponse func(a *Account)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// Validate will run validation rules. Username is optional: when empty it
// is derived from the email's local part, so only its length is checked.
func (e RegisterAccountMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(
			&e.Username,
			validation.Length(2, 255),
		),
		validation.Field(
			&e.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&e.Password,
			validation.Required,
			validation.Length(6, 72),
		),
	)
}

type RegisterAccountHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewRegisterAccountHandler creates a handler with sane defaults.
func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (h *RegisterAccountHandler) WithClock(clock func() time.Time) *RegisterAccountHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	acct := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acct.Username = getUsername(event.Username, event.Email)
		acct.Email = event.Email
		acct.Status = StatusInactive

		if err := acct.SetPassword(event.Password); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := acct.GenerateAuthKey(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate auth key")
		}

		if err := acct.GenerateAccessToken(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate access token")
		}

		if err := acct.GenerateEmailVerificationToken(h.now()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification token")
		}

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				acct.ID = id
			}
		}

		var err error
		if acct, err = h.repo.Accounts().SaveTx(ctx, tx, acct); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(acct)
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
