package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/justestif/go-music-platform/internal/db"
)

// Credentials looks up identities and verifies their passwords.
type Credentials struct {
	store  db.Store
	hasher *Hasher

	dummyOnce sync.Once
	dummy     string
}

// NewCredentials creates a Credentials verifier over store.
func NewCredentials(store db.Store, hasher *Hasher) *Credentials {
	return &Credentials{store: store, hasher: hasher}
}

// Lookup returns the identity registered under handle, or db.ErrNotFound.
func (c *Credentials) Lookup(ctx context.Context, handle string) (*db.Identity, error) {
	var identity *db.Identity
	err := c.store.InTx(ctx, func(tx db.Tx) error {
		found, err := tx.Identities().FindByHandle(ctx, handle)
		if err != nil {
			return err
		}
		identity = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// Verify returns the identity when password matches the stored hash for
// handle. Unknown handles and wrong passwords both yield ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, handle, password string) (*db.Identity, error) {
	identity, err := c.Lookup(ctx, handle)
	if errors.Is(err, db.ErrNotFound) {
		// Burn a comparison so unknown handles take as long as bad passwords.
		_, _ = c.hasher.Compare(c.dummyHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}

	ok, err := c.hasher.Compare(identity.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

func (c *Credentials) dummyHash() string {
	c.dummyOnce.Do(func() {
		c.dummy, _ = c.hasher.Hash("not-a-real-password")
	})
	return c.dummy
}
