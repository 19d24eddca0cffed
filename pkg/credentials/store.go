// Package credentials persists per-vehicle API tokens.
//
// The adapter stores exactly one opaque bearer token per vehicle. The last write wins and
// tokens never expire locally; a stale token surfaces as an authorization failure from the
// remote API, not as a local error.
package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotFound indicates no credential has been stored for a vehicle.
var ErrNotFound = errors.New("credential not found")

// Store is a key-value credential store keyed by vehicle id.
type Store interface {
	// Get returns the token stored for vehicleID, or ErrNotFound.
	Get(ctx context.Context, vehicleID string) (string, error)
	// Put stores token under vehicleID, overwriting any previous value.
	Put(ctx context.Context, vehicleID, token string) error
}

// TokenInfo describes claims extracted from a JWT-shaped credential.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiration time in the past.
func (i TokenInfo) Expired() bool {
	return !i.ExpiresAt.IsZero() && i.ExpiresAt.Before(time.Now())
}

// Inspect extracts claims from a JWT-shaped token without verifying its signature. The result
// is informational only (logging which account a credential belongs to); tokens are opaque to
// the adapter and non-JWT tokens are accepted everywhere. The second return value is false
// when the token does not parse as a JWT.
func Inspect(token string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}
	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
