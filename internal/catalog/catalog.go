// Package catalog implements the music platform's entity services: CRUD for
// artists, songs, playlists, membership plans and users, plus the operations
// that link them. Every operation runs in a single store transaction.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// Common errors.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation would break a uniqueness or
	// relationship rule.
	ErrConflict = errors.New("conflict")
)

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// lookup translates db.ErrNotFound into a catalog NotFound naming the record.
func lookup[T any](v *T, err error, kind string, id int64) (*T, error) {
	if errors.Is(err, db.ErrNotFound) {
		return nil, notFound("%s %d does not exist", kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", kind, err)
	}
	return v, nil
}

// unique returns a Conflict when a uniqueness lookup found a record other
// than selfID. selfID is zero on create.
func unique[T any](found *T, err error, idOf func(*T) int64, selfID int64, field, value string) error {
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", field, err)
	}
	if idOf(found) == selfID {
		return nil
	}
	return conflict("%s %q is already in use", field, value)
}

// ref returns a fresh pointer so stored records never share an ID variable.
func ref(id int64) *int64 {
	return &id
}

// inTx is a small helper for operations that return a value.
func inTx[T any](ctx context.Context, store db.Store, fn func(db.Tx) (T, error)) (T, error) {
	var out T
	err := store.InTx(ctx, func(tx db.Tx) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
