package account

import (
	"context"
	"time"
)

// AccountSaver is the slice of the store the state machine needs.
type AccountSaver interface {
	Save(ctx context.Context, a *Account) (*Account, error)
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*StateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *StateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish
// lifecycle and login audit events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *StateMachine) {
		sm.sink = normalizeActivitySink(sink)
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *StateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithStateMachineAuthenticator swaps the password verifier, e.g. for an
// argon2 migration or a remote credential service.
func WithStateMachineAuthenticator(auth PasswordAuthenticator) StateMachineOption {
	return func(sm *StateMachine) {
		if auth != nil {
			sm.auth = auth
		}
	}
}

// StateMachine owns account status transitions, login-attempt auditing and
// the lockout policy. Every operation mutates the in-memory account, emits
// audit events in order, and persists through the store exactly once;
// persistence happens last. Events are best-effort and never fail a
// transition.
//
// Operations are designed for request-scoped, sequential use. Two
// concurrent ValidatePassword calls against the same account race on the
// attempt counter and the later write wins; callers needing strict
// serialization must layer per-account mutual exclusion on top.
type StateMachine struct {
	store  AccountSaver
	sink   ActivitySink
	auth   PasswordAuthenticator
	logger Logger
	now    func() time.Time
}

// NewStateMachine returns a state machine persisting through the provided store.
func NewStateMachine(store AccountSaver, opts ...StateMachineOption) *StateMachine {
	sm := &StateMachine{
		store:  store,
		sink:   noopActivitySink{},
		auth:   BcryptAuthenticator{},
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// Activate transitions the account to active and resets the attempt
// counter, regardless of how many attempts it had accumulated.
func (sm *StateMachine) Activate(ctx context.Context, a *Account) error {
	if err := sm.ensureTransitionable(a); err != nil {
		return err
	}

	sm.markActive(ctx, a)

	return sm.save(ctx, a)
}

// Inactivate transitions the account to inactive.
func (sm *StateMachine) Inactivate(ctx context.Context, a *Account) error {
	if err := sm.ensureTransitionable(a); err != nil {
		return err
	}

	sm.markInactive(ctx, a)

	return sm.save(ctx, a)
}

// Delete soft-deletes the account. Deleted is terminal; the record stays
// in the store but is excluded from every identity lookup.
func (sm *StateMachine) Delete(ctx context.Context, a *Account) error {
	if err := sm.ensureTransitionable(a); err != nil {
		return err
	}

	from := a.Status
	a.Status = StatusDeleted

	event := eventFromAccount(ActivityEventAccountDeleted, a)
	event.FromStatus = from
	sm.record(ctx, event)

	return sm.save(ctx, a)
}

// ValidatePassword audits one login attempt and reports whether the
// cleartext password matches the account's hash.
//
// The attempt counter is incremented speculatively so the audit trail
// reflects every attempt. On a match the counter resets to zero; on a
// mismatch that reaches MaxLoginAttempts the account is inactivated in the
// same call. The account is persisted exactly once per call, after all
// events fired. A non-nil error means the write failed: the in-memory
// account is dirty and must be re-fetched before retrying, or the attempt
// would be audited twice.
func (sm *StateMachine) ValidatePassword(ctx context.Context, a *Account, password string) (bool, error) {
	if a == nil {
		return false, ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "account is nil",
		})
	}

	a.LoginAttempt++
	sm.record(ctx, eventFromAccount(ActivityEventLoginAttempt, a))

	if err := sm.auth.ComparePasswordAndHash(password, a.PasswordHash); err == nil {
		sm.record(ctx, eventFromAccount(ActivityEventLoginSuccess, a))
		a.LoginAttempt = 0

		if err := sm.save(ctx, a); err != nil {
			return false, err
		}
		return true, nil
	}

	sm.record(ctx, eventFromAccount(ActivityEventLoginFail, a))

	if a.LoginAttempt >= MaxLoginAttempts {
		sm.markInactive(ctx, a)
	}

	if err := sm.save(ctx, a); err != nil {
		return false, err
	}

	return false, nil
}

func (sm *StateMachine) markActive(ctx context.Context, a *Account) {
	from := a.Status
	a.Status = StatusActive
	a.LoginAttempt = 0

	event := eventFromAccount(ActivityEventAccountActivated, a)
	event.FromStatus = from
	sm.record(ctx, event)
}

func (sm *StateMachine) markInactive(ctx context.Context, a *Account) {
	from := a.Status
	a.Status = StatusInactive

	event := eventFromAccount(ActivityEventAccountInactivated, a)
	event.FromStatus = from
	sm.record(ctx, event)
}

func (sm *StateMachine) ensureTransitionable(a *Account) error {
	if a == nil {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "account is nil",
		})
	}

	if a.IsDeleted() {
		return ErrTerminalState.WithMetadata(map[string]any{
			"account_id": a.ID.String(),
		})
	}

	return nil
}

func (sm *StateMachine) save(ctx context.Context, a *Account) error {
	if sm.store == nil {
		return nil
	}

	if _, err := sm.store.Save(ctx, a); err != nil {
		return NewPersistenceError(err)
	}

	return nil
}

func (sm *StateMachine) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.sink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error: %v", err)
	}
}
