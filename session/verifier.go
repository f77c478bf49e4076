package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWKSVerifier validates access tokens against issuer, audience, and a JWKS
// key set (asymmetric deployments).
type JWKSVerifier struct {
	issuer   string
	audience string
	keySet   jwk.Set
}

// NewJWKSVerifier builds a verifier. Empty issuer or audience skips that
// check, matching deployments that pin keys but not metadata.
func NewJWKSVerifier(issuer, audience string, keySet jwk.Set) *JWKSVerifier {
	return &JWKSVerifier{issuer: issuer, audience: audience, keySet: keySet}
}

// Verify validates the token signature and registered claims and returns the
// subject as a user id.
func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (uuid.UUID, error) {
	if v.keySet == nil {
		return uuid.Nil, errors.New("session: missing key set")
	}
	opts := []jwt.ParseOption{
		jwt.WithKeySet(v.keySet),
		jwt.WithValidate(true),
		jwt.WithContext(ctx),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	token, err := jwt.ParseString(raw, opts...)
	if err != nil {
		return uuid.Nil, err
	}
	sub := token.Subject()
	if sub == "" {
		return uuid.Nil, errors.New("session: token missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.New("session: token subject is not a user id")
	}
	return id, nil
}
