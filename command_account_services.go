package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GrantServiceMessage adds a service id to an account's entitlement set.
// Granting an already-held service is a no-op.
type GrantServiceMessage struct {
	AccountID uuid.UUID `json:"account_id"`
	ServiceID string    `json:"service_id"`
}

func (m GrantServiceMessage) Type() string { return "account.service.grant" }

// RevokeServiceMessage removes a service id from an account's entitlement
// set. Revoking a service the account does not hold is a no-op.
type RevokeServiceMessage struct {
	AccountID uuid.UUID `json:"account_id"`
	ServiceID string    `json:"service_id"`
}

func (m RevokeServiceMessage) Type() string { return "account.service.revoke" }

// AccountServicesHandler mutates entitlement sets. Both operations load
// the account regardless of status: entitlements of inactive accounts can
// be administered while locked out.
type AccountServicesHandler struct {
	repo RepositoryManager
}

// NewAccountServicesHandler creates a handler with sane defaults.
func NewAccountServicesHandler(repo RepositoryManager) *AccountServicesHandler {
	return &AccountServicesHandler{repo: repo}
}

func (h *AccountServicesHandler) Grant(ctx context.Context, event GrantServiceMessage) error {
	return h.mutate(ctx, event.AccountID, func(a *Account) bool {
		return a.AddService(event.ServiceID)
	})
}

func (h *AccountServicesHandler) Revoke(ctx context.Context, event RevokeServiceMessage) error {
	return h.mutate(ctx, event.AccountID, func(a *Account) bool {
		return a.RemoveService(event.ServiceID)
	})
}

func (h *AccountServicesHandler) mutate(ctx context.Context, id uuid.UUID, mutator func(a *Account) bool) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acct, err := h.repo.Accounts().GetByID(ctx, id.String())
		if err != nil {
			if IsNotFound(err) {
				return ErrAccountNotFound.WithMetadata(map[string]any{
					"account_id": id.String(),
				})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for entitlement change")
		}

		if !mutator(acct) {
			return nil
		}

		if _, err := h.repo.Accounts().SaveTx(ctx, tx, acct); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store entitlement change")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "entitlement change transaction failed")
	}

	return nil
}
