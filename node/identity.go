package node

import (
	"context"
	"fmt"
	"sync"
)

// Identity memoizes the public key of a node. The first successful fetch
// wins and is never refreshed.
type Identity struct {
	mu sync.Mutex
	id ID
}

func (i *Identity) Get(ctx context.Context, fetch func(ctx context.Context) (ID, error)) (ID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.id != "" {
		return i.id, nil
	}
	id, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	i.id = id
	return id, nil
}

// Known returns the memoized id, if any.
func (i *Identity) Known() (ID, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.id, i.id != ""
}

// Verify checks that a freshly fetched id matches the memoized one, as
// required after a restart.
func (i *Identity) Verify(id ID) error {
	known, ok := i.Known()
	if !ok || known == id {
		return nil
	}
	return Protocol("restart", "identity changed from %s to %s", known, id)
}

// RequireSelf fails with ErrUnavailable when the identity is unknown.
func (i *Identity) RequireSelf() (ID, error) {
	id, ok := i.Known()
	if !ok {
		return "", Unavailable("identity", fmt.Errorf("node not initialized"))
	}
	return id, nil
}
