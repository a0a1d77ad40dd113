package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountsByServiceSQL selects the accounts entitled to a service without
// loading the whole collection: direct membership or the "*" sentinel,
// deleted accounts excluded. The services column holds a JSON array.
var AccountsByServiceSQL = `SELECT * FROM "accounts" AS "acc"
WHERE
	"acc"."status" <> 0
AND EXISTS (
	SELECT 1 FROM json_each("acc"."services") WHERE "json_each"."value" IN (?, '*')
);`

// Accounts is the account store. Lookups are status-scoped the way the
// identity layer consumes them: identity and token lookups only ever see
// active accounts, verification token lookups only inactive ones.
type Accounts interface {
	repository.Repository[*Account]

	FindIdentity(ctx context.Context, id uuid.UUID) (*Account, error)
	FindIdentityTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)
	FindByAccessToken(ctx context.Context, token string) (*Account, error)
	FindByAccessTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)
	FindByPasswordResetToken(ctx context.Context, token string, ttl time.Duration) (*Account, error)
	FindByPasswordResetTokenTx(ctx context.Context, tx bun.IDB, token string, ttl time.Duration) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)

	Save(ctx context.Context, record *Account) (*Account, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	ListByService(ctx context.Context, serviceID string) ([]*Account, error)
	All(ctx context.Context) ([]*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
	_ AccountSaver                    = (*accounts)(nil)
)

// AccountsOption customizes the repository.
type AccountsOption func(*accounts)

// WithAccountsClock injects the clock used for updated_at refreshes.
func WithAccountsClock(clock func() time.Time) AccountsOption {
	return func(a *accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewAccountsRepository builds the bun-backed account store.
func NewAccountsRepository(db *bun.DB, opts ...AccountsOption) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	repoAccounts := &accounts{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoAccounts)
		}
	}

	return repoAccounts
}

func (a *accounts) FindIdentity(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.FindIdentityTx(ctx, a.db, id)
}

func (a *accounts) FindIdentityTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	return findOne(ctx, tx, map[string]any{
		"id":     id.String(),
		"status": StatusActive,
	})
}

func (a *accounts) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return a.FindByUsernameTx(ctx, a.db, username)
}

func (a *accounts) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	return findOne(ctx, tx, map[string]any{
		"username": username,
		"status":   StatusActive,
	})
}

func (a *accounts) FindByAccessToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByAccessTokenTx(ctx, a.db, token)
}

func (a *accounts) FindByAccessTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	return findOne(ctx, tx, map[string]any{
		"access_token": token,
		"status":       StatusActive,
	})
}

// FindByPasswordResetToken resolves an active account by reset token. An
// expired or malformed token behaves exactly like a token that was never
// issued: the account is not found.
func (a *accounts) FindByPasswordResetToken(ctx context.Context, token string, ttl time.Duration) (*Account, error) {
	return a.FindByPasswordResetTokenTx(ctx, a.db, token, ttl)
}

func (a *accounts) FindByPasswordResetTokenTx(ctx context.Context, tx bun.IDB, token string, ttl time.Duration) (*Account, error) {
	if IsTokenExpired(token, ttl, a.now()) {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"reason": "password reset token expired",
			})
	}

	return findOne(ctx, tx, map[string]any{
		"password_reset_token": token,
		"status":               StatusActive,
	})
}

func (a *accounts) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByVerificationTokenTx(ctx, a.db, token)
}

func (a *accounts) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	return findOne(ctx, tx, map[string]any{
		"verification_token": token,
		"status":             StatusInactive,
	})
}

func (a *accounts) Save(ctx context.Context, record *Account) (*Account, error) {
	return a.SaveTx(ctx, a.db, record)
}

// SaveTx upserts the account. The store owns the timestamps: created_at is
// set on insert via column default, updated_at refreshes on every write.
func (a *accounts) SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	if record == nil {
		return nil, goerrors.New("cannot save nil account", goerrors.CategoryBadInput)
	}

	if err := a.validateRecord(record); err != nil {
		return nil, err
	}

	now := a.now()
	record.UpdatedAt = &now

	if record.CreatedAt == nil {
		prepareAccountDefaults(record)
		return a.Repository.CreateTx(ctx, tx, record)
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}

func (a *accounts) ListByService(ctx context.Context, serviceID string) ([]*Account, error) {
	return a.Repository.RawTx(ctx, a.db, AccountsByServiceSQL, serviceID)
}

func (a *accounts) All(ctx context.Context) ([]*Account, error) {
	var records []*Account
	if err := a.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *accounts) validateRecord(record *Account) error {
	if !record.Status.IsValid() {
		return goerrors.New("invalid account status", goerrors.CategoryValidation).
			WithMetadata(map[string]any{
				"status": int(record.Status),
			})
	}
	return nil
}

func findOne(ctx context.Context, tx bun.IDB, filter map[string]any) (*Account, error) {
	record := &Account{}
	q := tx.NewSelect().Model(record)

	for column, value := range filter {
		q.Where("?TableAlias."+column+" = ?", value)
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"filter": filter,
				})
		}
		return nil, err
	}

	return record, nil
}

// prepareAccountDefaults applies creation-time defaults. The status enum's
// zero value is the deleted status, which must never be reachable on
// insert, so unset statuses default to inactive here rather than through
// the type's zero value.
func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Status == 0 {
		record.Status = StatusInactive
	}

	if record.Services == nil {
		record.Services = []string{}
	}
}
