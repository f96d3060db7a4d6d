package oval

import (
	"fmt"
	"slices"
	"sync"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// Authorizer is the in-memory allow list gating every service operation.
// The owner is always authorized and is the only caller allowed to change
// the list. With neither an owner nor any callers configured, every caller
// is accepted.
type Authorizer struct {
	mu      sync.RWMutex
	owner   string
	callers map[string]struct{}
}

// NewAuthorizer creates an allow list seeded with callers.
func NewAuthorizer(owner string, callers []string) *Authorizer {
	a := &Authorizer{owner: owner, callers: make(map[string]struct{}, len(callers))}
	for _, c := range callers {
		if c != "" {
			a.callers[c] = struct{}{}
		}
	}
	return a
}

// Enabled reports whether authorization is enforced.
func (a *Authorizer) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner != "" || len(a.callers) > 0
}

// Authorize fails with domain.ErrUnauthorized when caller is not allowed.
func (a *Authorizer) Authorize(caller string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.owner == "" && len(a.callers) == 0 {
		return nil
	}
	if caller != "" && caller == a.owner {
		return nil
	}
	if _, ok := a.callers[caller]; ok && caller != "" {
		return nil
	}
	return fmt.Errorf("%w: %q", domain.ErrUnauthorized, caller)
}

func (a *Authorizer) requireOwner(caller string) error {
	if a.owner == "" || caller != a.owner {
		return fmt.Errorf("%w: only the owner may change the allow list", domain.ErrUnauthorized)
	}
	return nil
}

// Add grants id access. Only the owner may call it.
func (a *Authorizer) Add(caller, id string) error {
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty caller id", domain.ErrInvalidInputShape)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callers[id] = struct{}{}
	return nil
}

// Remove revokes id. Removing an unknown id is not an error.
func (a *Authorizer) Remove(caller, id string) error {
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.callers, id)
	return nil
}

// List returns the authorized callers in sorted order.
func (a *Authorizer) List(caller string) ([]string, error) {
	if err := a.Authorize(caller); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.callers))
	for c := range a.callers {
		out = append(out, c)
	}
	slices.Sort(out)
	return out, nil
}
