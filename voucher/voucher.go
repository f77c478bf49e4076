// Package voucher implements redeemable access codes. A voucher carries the
// scope it grants; redeeming a valid code yields the entitlement row the
// grant pipeline inserts. Codes are stored hashed; only a short lookup
// prefix is kept in clear for retrieval.
package voucher

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"

	"github.com/open-rails/accesskit/entitlements"
)

const (
	// CodePrefix identifies voucher codes.
	CodePrefix = "vch_"
	// codeBytes is the random payload length (20 bytes ≈ 27 base58 chars).
	codeBytes = 20
	// lookupLen is how many payload characters form the lookup prefix.
	lookupLen = 8
)

var (
	ErrMalformedCode = errors.New("voucher: malformed code")
	ErrCodeMismatch  = errors.New("voucher: unknown or mismatched code")
	ErrExhausted     = errors.New("voucher: redemption limit reached")
	ErrExpired       = errors.New("voucher: expired")
)

// Voucher is one redeemable code and the grant it yields.
type Voucher struct {
	ID             uuid.UUID          `json:"id"`
	CodePrefix     string             `json:"code_prefix"`
	CodeHash       string             `json:"-"`
	Scope          entitlements.Scope `json:"scope"`
	GrantFor       time.Duration      `json:"grant_for"` // 0 means open-ended
	MaxRedemptions int                `json:"max_redemptions"`
	Redeemed       int                `json:"redeemed"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// GenerateCode creates a new code.
// Format: vch_<base58(20 random bytes)>. The full code is returned once and
// never stored; persist lookupPrefix and hash instead.
func GenerateCode() (code, lookupPrefix, hash string, err error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("voucher: generate code: %w", err)
	}
	payload := base58.Encode(buf)
	code = CodePrefix + payload
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}
	return code, payload[:lookupLen], string(h), nil
}

// LookupPrefix validates the shape of a presented code and returns its
// lookup prefix.
func LookupPrefix(code string) (string, error) {
	if len(code) <= len(CodePrefix)+lookupLen || code[:len(CodePrefix)] != CodePrefix {
		return "", ErrMalformedCode
	}
	payload := code[len(CodePrefix):]
	if _, err := base58.Decode(payload); err != nil {
		return "", ErrMalformedCode
	}
	return payload[:lookupLen], nil
}

// VerifyCode compares a stored hash with a presented code.
func VerifyCode(hash, code string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return err == nil, err
}

// Redeemable reports whether the voucher can still be redeemed at now.
func (v *Voucher) Redeemable(now time.Time) error {
	if v.ExpiresAt != nil && now.After(*v.ExpiresAt) {
		return ErrExpired
	}
	if v.MaxRedemptions > 0 && v.Redeemed >= v.MaxRedemptions {
		return ErrExhausted
	}
	return nil
}

// Grant builds the entitlement row a successful redemption yields.
func (v *Voucher) Grant(userID uuid.UUID, now time.Time) entitlements.Entitlement {
	e := entitlements.Entitlement{
		ID:       uuid.New(),
		UserID:   userID,
		Scope:    v.Scope,
		Source:   entitlements.SourceVoucher,
		Active:   true,
		StartsAt: &now,
	}
	if v.GrantFor > 0 {
		end := now.Add(v.GrantFor)
		e.EndsAt = &end
	}
	return e
}
