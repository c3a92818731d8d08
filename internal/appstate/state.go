// Package appstate holds the client's session: the signed-in account, its
// bearer token and the cached category list.
//
// A State is shared by the API client and whatever drives it. Reset clears
// everything at once; the client calls it on logout and on any 401.
package appstate

import (
	"sync"

	"github.com/bookbrief/bookbrief/internal/entities"
)

// Account is the signed-in user as the API reports it.
type Account struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Role  entities.UserRole `json:"role,omitempty"`
}

type State struct {
	mu         sync.RWMutex
	account    *Account
	token      string
	categories []entities.CategoryWithCount
	cached     bool
}

func New() *State {
	return &State{}
}

// SignIn records a successful login.
func (s *State) SignIn(token string, account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.account = &account
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Account returns a copy of the signed-in account, or nil.
func (s *State) Account() *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	a := *s.account
	return &a
}

func (s *State) IsAuthenticated() bool {
	return s.Token() != ""
}

// Categories returns the cached category list and whether one is cached.
func (s *State) Categories() ([]entities.CategoryWithCount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.cached {
		return nil, false
	}
	out := make([]entities.CategoryWithCount, len(s.categories))
	copy(out, s.categories)
	return out, true
}

func (s *State) SetCategories(categories []entities.CategoryWithCount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]entities.CategoryWithCount(nil), categories...)
	s.cached = true
}

// Reset signs out and drops every cache.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	s.token = ""
	s.categories = nil
	s.cached = false
}
