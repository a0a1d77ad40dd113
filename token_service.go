package account

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ErrTokenExpired is returned for session tokens past their expiration.
var ErrTokenExpired = goerrors.New("session token is expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned for session tokens that fail to parse or verify.
var ErrTokenMalformed = goerrors.New("session token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// TokenClaims are the session JWT claims. The services claim carries the
// account's entitlement set so API layers can gate routes without a store
// round trip.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Services []string `json:"svc,omitempty"`
}

// AccountID returns the account id carried by the token.
func (c *TokenClaims) AccountID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// HasService mirrors the entitlement check against the claims snapshot.
// The snapshot reflects the account at token issuance, not the store.
func (c *TokenClaims) HasService(serviceID string) bool {
	for _, s := range c.Services {
		if s == serviceID || s == ServiceFullAccess {
			return true
		}
	}
	return false
}

// TokenService mints and validates session JWTs for authenticated accounts.
type TokenService struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenServiceFromConfig creates a TokenService from external configuration
func NewTokenServiceFromConfig(opts Config, logger Logger) *TokenService {
	return NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		logger,
	)
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience []string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
	}
}

// Generate creates a session JWT carrying the identity's services claim
func (ts *TokenService) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryBadInput)
	}

	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID:      identity.ID(),
		Services: identity.Services(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
