package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// Gateway exposes login and registration on top of Credentials and TokenService.
type Gateway struct {
	store       db.Store
	hasher      *Hasher
	credentials *Credentials
	tokens      *TokenService
}

// NewGateway creates a Gateway.
func NewGateway(store db.Store, hasher *Hasher, credentials *Credentials, tokens *TokenService) *Gateway {
	return &Gateway{
		store:       store,
		hasher:      hasher,
		credentials: credentials,
		tokens:      tokens,
	}
}

// Registration holds the fields required to create an identity.
type Registration struct {
	Handle    string
	Password  string
	FirstName string
	LastName  string
}

// Login verifies credentials and returns a fresh token.
func (g *Gateway) Login(ctx context.Context, handle, password string) (string, error) {
	identity, err := g.credentials.Verify(ctx, handle, password)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return g.tokens.Issue(identity)
}

// Register creates a USER identity and returns a token for it. A taken
// handle surfaces as db.ErrDuplicate.
func (g *Gateway) Register(ctx context.Context, reg Registration) (string, error) {
	identity, err := g.create(ctx, reg, db.RoleUser)
	if err != nil {
		return "", err
	}
	return g.tokens.Issue(identity)
}

// EnsureAdmin creates an ADMIN identity, or promotes and re-keys the
// existing identity with the same handle.
func (g *Gateway) EnsureAdmin(ctx context.Context, reg Registration) (*db.Identity, error) {
	hash, err := g.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	var identity *db.Identity
	err = g.store.InTx(ctx, func(tx db.Tx) error {
		existing, err := tx.Identities().FindByHandle(ctx, reg.Handle)
		switch {
		case errors.Is(err, db.ErrNotFound):
			identity = &db.Identity{
				Handle:       reg.Handle,
				PasswordHash: hash,
				FirstName:    reg.FirstName,
				LastName:     reg.LastName,
				Role:         db.RoleAdmin,
			}
			return tx.Identities().Create(ctx, identity)
		case err != nil:
			return err
		}

		existing.PasswordHash = hash
		existing.Role = db.RoleAdmin
		if reg.FirstName != "" {
			existing.FirstName = reg.FirstName
		}
		if reg.LastName != "" {
			existing.LastName = reg.LastName
		}
		identity = existing
		return tx.Identities().Update(ctx, existing)
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring admin %q: %w", reg.Handle, err)
	}
	return identity, nil
}

func (g *Gateway) create(ctx context.Context, reg Registration, role db.Role) (*db.Identity, error) {
	hash, err := g.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	identity := &db.Identity{
		Handle:       reg.Handle,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Role:         role,
	}
	err = g.store.InTx(ctx, func(tx db.Tx) error {
		return tx.Identities().Create(ctx, identity)
	})
	if err != nil {
		return nil, fmt.Errorf("registering %q: %w", reg.Handle, err)
	}
	return identity, nil
}
