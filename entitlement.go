package account

import (
	"context"
	"time"
)

// HasService reports whether the account is entitled to the service id.
// Kept as a free function for callers that hold an account but no Checker.
func HasService(a *Account, serviceID string) bool {
	if a == nil {
		return false
	}
	return a.HasService(serviceID)
}

// CheckerOption customizes Checker construction.
type CheckerOption func(*Checker)

// WithCheckerActivitySink sets the sink receiving service check events.
func WithCheckerActivitySink(sink ActivitySink) CheckerOption {
	return func(c *Checker) {
		c.sink = normalizeActivitySink(sink)
	}
}

// WithCheckerClock injects a custom clock (useful for tests).
func WithCheckerClock(clock func() time.Time) CheckerOption {
	return func(c *Checker) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithCheckerLogger overrides the logger used for sink failures.
func WithCheckerLogger(logger Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Checker evaluates service entitlements and emits audit events around
// each evaluation. It performs no I/O besides the activity sink.
type Checker struct {
	sink   ActivitySink
	logger Logger
	now    func() time.Time
}

// NewChecker returns an entitlement checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		sink:   noopActivitySink{},
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// ValidateService reports whether the account may access the service,
// emitting a check event followed by a granted or denied event. The notify
// flag travels on the event payload for sinks to honor; it never changes
// the result.
func (c *Checker) ValidateService(ctx context.Context, a *Account, serviceID string, notify bool) bool {
	c.record(ctx, a, ActivityEventValidateService, serviceID, notify)

	if !HasService(a, serviceID) {
		c.record(ctx, a, ActivityEventValidateServiceDenied, serviceID, notify)
		return false
	}

	c.record(ctx, a, ActivityEventValidateServicePassed, serviceID, notify)
	return true
}

func (c *Checker) record(ctx context.Context, a *Account, eventType ActivityEventType, serviceID string, notify bool) {
	event := eventFromAccount(eventType, a)
	event.ServiceID = serviceID
	event.Notify = notify
	event.OccurredAt = c.now()

	sink := normalizeActivitySink(c.sink)
	if err := sink.Record(ctx, event); err != nil {
		c.logger.Warn("entitlement checker activity sink error: %v", err)
	}
}
