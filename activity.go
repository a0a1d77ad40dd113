package account

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported audit event categories.
type ActivityEventType string

const (
	ActivityEventLoginAttempt          ActivityEventType = "account.login.attempt"
	ActivityEventLoginSuccess          ActivityEventType = "account.login.success"
	ActivityEventLoginFail             ActivityEventType = "account.login.fail"
	ActivityEventAccountActivated      ActivityEventType = "account.status.activated"
	ActivityEventAccountInactivated    ActivityEventType = "account.status.inactivated"
	ActivityEventAccountDeleted        ActivityEventType = "account.status.deleted"
	ActivityEventValidateService       ActivityEventType = "account.service.check"
	ActivityEventValidateServicePassed ActivityEventType = "account.service.granted"
	ActivityEventValidateServiceDenied ActivityEventType = "account.service.denied"
)

// ActivityEvent captures audit-friendly information about an account
// action. The payload carries everything a handler needs; handlers never
// reach back into the emitting component for call context.
type ActivityEvent struct {
	EventType    ActivityEventType
	AccountID    string
	Username     string
	LoginAttempt int
	FromStatus   AccountStatus
	ToStatus     AccountStatus
	// ServiceID is set for service validation events.
	ServiceID string
	// Notify tells sinks whether the caller wants the event forwarded to
	// the operator channel. The check result itself is unaffected.
	Notify     bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func eventFromAccount(eventType ActivityEventType, a *Account) ActivityEvent {
	event := ActivityEvent{
		EventType: eventType,
		Notify:    true,
	}

	if a != nil {
		event.AccountID = a.ID.String()
		event.Username = a.Username
		event.LoginAttempt = a.LoginAttempt
		event.FromStatus = a.Status
		event.ToStatus = a.Status
	}

	return event
}
