package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/open-rails/accesskit/store"
)

// TokenProvider derives the current identity from platform access tokens.
// It wraps an oauth2.TokenSource, so transparent token refresh is handled by
// the source; when a refresh yields a token for a different subject (or the
// source stops yielding tokens at all), subscribers are notified of the
// identity change.
type TokenProvider struct {
	source oauth2.TokenSource
	verify Verifier
	log    logrus.FieldLogger

	mu       sync.Mutex
	lastID   uuid.UUID
	lastSeen bool
	fan      fanout
}

// NewTokenProvider builds a provider over the given token source and
// verifier. A nil logger falls back to the logrus standard logger.
func NewTokenProvider(source oauth2.TokenSource, verify Verifier, log logrus.FieldLogger) *TokenProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TokenProvider{source: source, verify: verify, log: log}
}

// CurrentUserID obtains a token from the source (refreshing if needed),
// verifies it, and returns the subject. Any failure reads as signed-out
// rather than an error: entitlement checks fail closed on an absent user.
func (p *TokenProvider) CurrentUserID(ctx context.Context) (uuid.UUID, bool) {
	tok, err := p.source.Token()
	if err != nil {
		p.log.WithError(err).Debug("token source yielded no token")
		return p.observe(uuid.Nil, false)
	}
	id, err := p.verify.Verify(ctx, tok.AccessToken)
	if err != nil {
		p.log.WithError(err).Debug("access token rejected")
		return p.observe(uuid.Nil, false)
	}
	return p.observe(id, true)
}

func (p *TokenProvider) Subscribe(fn func(store.AuthEvent)) func() {
	return p.fan.subscribe(fn)
}

// observe records the latest identity and emits an event when it changed.
func (p *TokenProvider) observe(id uuid.UUID, signedIn bool) (uuid.UUID, bool) {
	p.mu.Lock()
	changed := id != p.lastID || signedIn != p.lastSeen
	p.lastID, p.lastSeen = id, signedIn
	p.mu.Unlock()
	if changed {
		p.fan.emit(store.AuthEvent{UserID: id, SignedIn: signedIn})
	}
	return id, signedIn
}
