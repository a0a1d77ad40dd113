package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the persisted lifecycle status. The numeric values are
// wire-compatible with the documents written by earlier deployments.
type AccountStatus int

const (
	// StatusDeleted marks a soft-deleted account. Terminal.
	StatusDeleted AccountStatus = 0
	// StatusInactive marks an account that cannot authenticate (new signup,
	// or locked out after too many failed attempts).
	StatusInactive AccountStatus = 9
	// StatusActive marks an account in good standing.
	StatusActive AccountStatus = 10
)

// IsValid checks the status is one of the predefined values
func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeleted:
		return true
	default:
		return false
	}
}

func (s AccountStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// MaxLoginAttempts is the number of audited attempts after which an
// account is inactivated. The lockout happens on the attempt that reaches
// the threshold, not after it.
const MaxLoginAttempts = 5

// ServiceFullAccess is the sentinel service id granting access to every service.
const ServiceFullAccess = "*"

// Account is the persisted user identity
type Account struct {
	bun.BaseModel      `bun:"table:accounts,alias:acc"`
	ID                 uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username           string        `bun:"username,notnull,unique" json:"username,omitempty"`
	Email              string        `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash       string        `bun:"password_hash" json:"-"`
	AuthKey            string        `bun:"auth_key" json:"-"`
	AccessToken        string        `bun:"access_token,unique" json:"access_token,omitempty"`
	PasswordResetToken string        `bun:"password_reset_token,nullzero" json:"-"`
	VerificationToken  string        `bun:"verification_token,nullzero" json:"-"`
	Status             AccountStatus `bun:"status,notnull" json:"status"`
	LoginAttempt       int           `bun:"login_attempt" json:"login_attempt,omitempty"`
	Services           []string      `bun:"services" json:"services,omitempty"`
	CreatedAt          *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsActive reports whether the account may authenticate
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsInactive reports whether the account is inactive
func (a *Account) IsInactive() bool {
	return a.Status == StatusInactive
}

// IsDeleted reports whether the account is soft deleted
func (a *Account) IsDeleted() bool {
	return a.Status == StatusDeleted
}

// SetPassword hashes the cleartext password and stores the hash. The
// cleartext is never retained.
func (a *Account) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// ValidateAuthKey compares the "remember me" auth key
func (a *Account) ValidateAuthKey(authKey string) bool {
	return a.AuthKey != "" && a.AuthKey == authKey
}

// GenerateAuthKey overwrites the "remember me" authentication key
func (a *Account) GenerateAuthKey() error {
	key, err := RandomToken()
	if err != nil {
		return err
	}
	a.AuthKey = key
	return nil
}

// GenerateAccessToken overwrites the bearer access token. Uniqueness across
// accounts is enforced by the store, not here.
func (a *Account) GenerateAccessToken() error {
	token, err := RandomToken()
	if err != nil {
		return err
	}
	a.AccessToken = token
	return nil
}

// GeneratePasswordResetToken overwrites the reset token with a fresh
// timestamped token issued at now.
func (a *Account) GeneratePasswordResetToken(now time.Time) error {
	token, err := NewTimestampedToken(now)
	if err != nil {
		return err
	}
	a.PasswordResetToken = token
	return nil
}

// GenerateEmailVerificationToken overwrites the verification token with a
// fresh timestamped token issued at now.
func (a *Account) GenerateEmailVerificationToken(now time.Time) error {
	token, err := NewTimestampedToken(now)
	if err != nil {
		return err
	}
	a.VerificationToken = token
	return nil
}

// RemovePasswordResetToken clears the reset token after use
func (a *Account) RemovePasswordResetToken() {
	a.PasswordResetToken = ""
}

// RemoveVerificationToken clears the verification token after use
func (a *Account) RemoveVerificationToken() {
	a.VerificationToken = ""
}

// HasService reports whether the account is entitled to the given service
// id, either by direct membership or through the full-access sentinel.
// Matching is exact and case-sensitive; duplicate entries are tolerated.
func (a *Account) HasService(serviceID string) bool {
	for _, s := range a.Services {
		if s == serviceID || s == ServiceFullAccess {
			return true
		}
	}
	return false
}

// AddService grants a service entitlement. Returns false when the account
// already holds it.
func (a *Account) AddService(serviceID string) bool {
	for _, s := range a.Services {
		if s == serviceID {
			return false
		}
	}
	a.Services = append(a.Services, serviceID)
	return true
}

// RemoveService revokes a service entitlement. Returns false when the
// account does not hold it.
func (a *Account) RemoveService(serviceID string) bool {
	removed := false
	services := a.Services[:0]
	for _, s := range a.Services {
		if s == serviceID {
			removed = true
			continue
		}
		services = append(services, s)
	}
	a.Services = services
	return removed
}
