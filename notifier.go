package account

import (
	"context"
	"fmt"
)

// MessageTemplate renders an activity event into an operator message.
type MessageTemplate func(event ActivityEvent) string

// defaultTemplates mirror the operator messages of the original
// deployment, which reported to a Russian-speaking operations channel.
func defaultTemplates() map[ActivityEventType]MessageTemplate {
	return map[ActivityEventType]MessageTemplate{
		ActivityEventLoginAttempt: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s попытка авторизации", e.Username)
		},
		ActivityEventLoginSuccess: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s пароль принят", e.Username)
		},
		ActivityEventLoginFail: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s пароль не принят %d", e.Username, e.LoginAttempt)
		},
		ActivityEventAccountInactivated: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s заблокирована", e.Username)
		},
		ActivityEventAccountActivated: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s активирована", e.Username)
		},
		ActivityEventAccountDeleted: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s удалена", e.Username)
		},
		ActivityEventValidateService: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s проверка разрешения доступа к сервису %s", e.Username, e.ServiceID)
		},
		ActivityEventValidateServicePassed: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s доступ к сервису разрешен", e.Username)
		},
		ActivityEventValidateServiceDenied: func(e ActivityEvent) string {
			return fmt.Sprintf("Учетная запись %s доступ к сервису запрещен", e.Username)
		},
	}
}

// NotifierSink is an ActivitySink that renders events into human-readable
// messages and forwards them to a NotificationSink. Delivery is
// fire-and-forget: sink failures are logged and never surface to the
// component that raised the event.
type NotifierSink struct {
	sink      NotificationSink
	templates map[ActivityEventType]MessageTemplate
	logger    Logger
}

// NotifierOption customizes NotifierSink construction.
type NotifierOption func(*NotifierSink)

// WithNotifierLogger overrides the logger used for delivery failures.
func WithNotifierLogger(logger Logger) NotifierOption {
	return func(n *NotifierSink) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithNotifierTemplates replaces message templates for the given events,
// e.g. to localize operator messages.
func WithNotifierTemplates(templates map[ActivityEventType]MessageTemplate) NotifierOption {
	return func(n *NotifierSink) {
		for eventType, tpl := range templates {
			if tpl != nil {
				n.templates[eventType] = tpl
			}
		}
	}
}

// NewNotifierSink builds a sink forwarding audit events to the operator
// channel behind the given NotificationSink.
func NewNotifierSink(sink NotificationSink, opts ...NotifierOption) *NotifierSink {
	n := &NotifierSink{
		sink:      sink,
		templates: defaultTemplates(),
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	return n
}

// Record implements ActivitySink. Events with Notify=false are audited but
// not forwarded. Record never returns a delivery error.
func (n *NotifierSink) Record(ctx context.Context, event ActivityEvent) error {
	if n.sink == nil || !event.Notify {
		return nil
	}

	tpl, ok := n.templates[event.EventType]
	if !ok {
		return nil
	}

	if err := n.sink.Send(ctx, tpl(event)); err != nil {
		n.logger.Warn("notification sink send error: %v", err)
	}

	return nil
}

var _ ActivitySink = (*NotifierSink)(nil)
