package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/open-rails/accesskit/store"
)

// Static is an in-memory auth provider driven by explicit SignIn/SignOut
// calls. Intended for tests and single-user tooling.
type Static struct {
	mu       sync.Mutex
	userID   uuid.UUID
	signedIn bool
	fan      fanout
}

func NewStatic() *Static {
	return &Static{}
}

// SignIn sets the current identity and notifies subscribers.
func (s *Static) SignIn(userID uuid.UUID) {
	s.mu.Lock()
	s.userID = userID
	s.signedIn = userID != uuid.Nil
	signedIn := s.signedIn
	s.mu.Unlock()
	s.fan.emit(store.AuthEvent{UserID: userID, SignedIn: signedIn})
}

// SignOut clears the current identity and notifies subscribers.
func (s *Static) SignOut() {
	s.mu.Lock()
	s.userID = uuid.Nil
	s.signedIn = false
	s.mu.Unlock()
	s.fan.emit(store.AuthEvent{})
}

func (s *Static) CurrentUserID(_ context.Context) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.signedIn
}

func (s *Static) Subscribe(fn func(store.AuthEvent)) func() {
	return s.fan.subscribe(fn)
}
