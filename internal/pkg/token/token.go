// Package token issues and verifies the bearer tokens handed out at login.
// Tokens are HS256 JWTs carrying only the subject and expiry; roles are
// never embedded so permission changes take effect without re-login.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authcore/account-service/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Issuer signs and verifies tokens with a single process-wide secret.
// The secret and lifetime are injected at construction so tests can use
// isolated keys.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A non-positive ttl falls back to 24h.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token binding subject to an expiry ttl from now.
func (i *Issuer) Issue(subject string) (string, error) {
	now := i.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded subject.
// Every failure mode (bad signature, expired, malformed, foreign key,
// unexpected algorithm, missing subject) collapses into
// domain.ErrInvalidToken so callers cannot leak validation internals.
func (i *Issuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
