// FilePath: internal/session/session.go
package session

import (
	"sync"

	"github.com/fieldworks/meterhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const eventChanged = "session.changed"

// Identity is the authenticated user as every component sees it.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Store holds the current authenticated identity. Exactly one writer
// exists (the auth event stream); everyone else reads the current value
// or subscribes to changes. Last write wins.
type Store struct {
	mu      sync.RWMutex
	current *Identity
	events  *nuts.EventEmitter
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		events: nuts.NewEventEmitter(),
	}
}

// Current returns the current identity, or nil when signed out. The
// returned value is a copy; mutating it does not affect the store.
func (s *Store) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Set publishes a new identity to all subscribers
func (s *Store) Set(id *Identity) {
	s.mu.Lock()
	if id != nil {
		cp := *id
		s.current = &cp
	} else {
		s.current = nil
	}
	s.mu.Unlock()

	s.events.Emit(eventChanged, id)
}

// Clear signs the store out and notifies subscribers
func (s *Store) Clear() {
	s.Set(nil)
}

// Subscribe registers a callback fired on every sign-in, refresh and
// sign-out. The callback receives nil on sign-out.
func (s *Store) Subscribe(name string, fn func(*Identity)) {
	s.events.On(eventChanged, name, func(args ...interface{}) {
		if len(args) == 0 {
			fn(nil)
			return
		}
		id, _ := args[0].(*Identity)
		fn(id)
	})
}

// IsAuthenticated reports whether an identity is present
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// IsAdmin reports whether the current identity carries the admin role
func (s *Store) IsAdmin() bool {
	id := s.Current()
	return id != nil && id.Role == models.RoleAdmin
}
