package account

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// randomTokenBytes yields 32 URL-safe characters once encoded, matching the
// length of the tokens issued by earlier deployments.
const randomTokenBytes = 24

// RandomToken returns a cryptographically random, URL-safe opaque token.
func RandomToken() (string, error) {
	buf := make([]byte, randomTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewTimestampedToken returns a random token carrying its issuance time as
// a "_<unix-seconds>" suffix, usable for expiry computation.
func NewTimestampedToken(now time.Time) (string, error) {
	token, err := RandomToken()
	if err != nil {
		return "", err
	}
	return token + "_" + strconv.FormatInt(now.Unix(), 10), nil
}

// TokenIssuedAt extracts the issuance time from a timestamped token. The
// second return is false for empty or malformed tokens.
func TokenIssuedAt(token string) (time.Time, bool) {
	idx := strings.LastIndex(token, "_")
	if idx < 0 || idx == len(token)-1 {
		return time.Time{}, false
	}

	seconds, err := strconv.ParseInt(token[idx+1:], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(seconds, 0), true
}

// IsTokenExpired reports whether a timestamped token has outlived ttl at
// the given instant. It fails closed: empty or malformed tokens are
// expired.
func IsTokenExpired(token string, ttl time.Duration, now time.Time) bool {
	issuedAt, ok := TokenIssuedAt(token)
	if !ok {
		return true
	}
	return issuedAt.Add(ttl).Before(now)
}
