package session

import (
	"fmt"
	"sync"
	"time"

	"voicelock-go/internal/platform/errors"
)

// State is the authentication state machine position.
type State string

const (
	StateLocked           State = "locked"
	StateTokenPending     State = "token_pending"
	StateBiometricPending State = "biometric_pending"
	StateUnlocked         State = "unlocked"
)

// AuthenticationSession holds the lock flag and the active user identity.
// It is owned by the two-factor coordinator; other components receive it by
// handle and may only read. Invariant: the active user is set if and only if
// the state is unlocked.
type AuthenticationSession struct {
	mu              sync.RWMutex
	state           State
	provisionalUser string
	activeUser      string
	startedAt       time.Time
	unlockedAt      time.Time
}

// New creates a session in the locked state with no active user.
func New() *AuthenticationSession {
	return &AuthenticationSession{
		state:     StateLocked,
		startedAt: time.Now(),
	}
}

// BeginAttempt starts an authentication attempt.
func (s *AuthenticationSession) BeginAttempt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLocked {
		return errors.New(errors.KindAuth, "session.begin",
			fmt.Sprintf("cannot begin attempt from state %s", s.state))
	}
	s.state = StateTokenPending
	s.provisionalUser = ""
	return nil
}

// BindProvisional records the token-identified user and advances to the
// biometric factor.
func (s *AuthenticationSession) BindProvisional(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTokenPending {
		return errors.New(errors.KindAuth, "session.bind",
			fmt.Sprintf("cannot bind provisional user from state %s", s.state))
	}
	if username == "" {
		return errors.New(errors.KindAuth, "session.bind", "empty provisional username")
	}
	s.state = StateBiometricPending
	s.provisionalUser = username
	return nil
}

// Fail aborts the current attempt. Every failure path lands back at locked
// with no residual provisional state, so a retry starts clean.
func (s *AuthenticationSession) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnlocked {
		return
	}
	s.state = StateLocked
	s.provisionalUser = ""
}

// Unlock completes the attempt: the provisional user becomes the active user
// for the remainder of the session.
func (s *AuthenticationSession) Unlock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBiometricPending {
		return errors.New(errors.KindAuth, "session.unlock",
			fmt.Sprintf("cannot unlock from state %s", s.state))
	}
	if s.provisionalUser == "" {
		return errors.New(errors.KindAuth, "session.unlock", "no provisional user bound")
	}
	s.state = StateUnlocked
	s.activeUser = s.provisionalUser
	s.provisionalUser = ""
	s.unlockedAt = time.Now()
	return nil
}

// State returns the current state.
func (s *AuthenticationSession) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ProvisionalUser returns the user bound by the token factor, if any.
func (s *AuthenticationSession) ProvisionalUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provisionalUser
}

// ActiveUser returns the unlocked user identity.
func (s *AuthenticationSession) ActiveUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeUser, s.state == StateUnlocked
}

// Unlocked reports whether both factors have completed.
func (s *AuthenticationSession) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateUnlocked
}

// Snapshot is a read-only view served to the web API.
type Snapshot struct {
	State      State     `json:"state"`
	ActiveUser string    `json:"active_user,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

func (s *AuthenticationSession) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:      s.state,
		ActiveUser: s.activeUser,
		StartedAt:  s.startedAt,
		UnlockedAt: s.unlockedAt,
	}
}
