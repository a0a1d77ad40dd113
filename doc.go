// Package account implements a user-account and authentication subsystem:
// registration, password login with attempt auditing and automatic lockout,
// opaque token lifecycle (auth key, access token, password reset, email
// verification), and per-account service entitlement checks.
//
// Account lifecycle:
//   - Accounts carry a numeric AccountStatus (active, inactive, deleted)
//     persisted via Bun. New accounts start inactive and are activated once
//     their email verification token is consumed. Deleted is a soft-delete
//     terminal status; deleted accounts never match identity lookups.
//   - StateMachine centralizes transitions, login-attempt auditing, and the
//     lockout policy (five failed attempts inactivate the account on the
//     attempt that reaches the threshold).
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the state machine
//     and the entitlement checker. Sinks run best-effort (errors are logged)
//     so you can forward events to an operator channel without blocking
//     authentication. NotifierSink renders events into human-readable
//     messages for a NotificationSink.
//
// Entitlements:
//   - Accounts hold a set of service identifiers; the sentinel "*" grants
//     full access. Checker evaluates membership and emits check/granted/
//     denied events, Accounts.ListByService answers the same question at the
//     query level.
package account
