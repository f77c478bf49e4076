package session

import (
	"context"
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SecretVerifier validates HS256 access tokens signed with a shared secret
// (the legacy symmetric deployment mode).
type SecretVerifier struct {
	secret []byte
	issuer string
}

// NewSecretVerifier builds a verifier for the given shared secret. Empty
// issuer skips the issuer check.
func NewSecretVerifier(secret []byte, issuer string) *SecretVerifier {
	return &SecretVerifier{secret: secret, issuer: issuer}
}

func (v *SecretVerifier) Verify(_ context.Context, raw string) (uuid.UUID, error) {
	if len(v.secret) == 0 {
		return uuid.Nil, errors.New("session: missing shared secret")
	}
	var claims jwt.RegisteredClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Subject == "" {
		return uuid.Nil, errors.New("session: token missing subject")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("session: token subject is not a user id")
	}
	return id, nil
}
