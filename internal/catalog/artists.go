package catalog

import (
	"context"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// ArtistService manages artists.
type ArtistService struct {
	store db.Store
}

// NewArtistService creates an ArtistService.
func NewArtistService(store db.Store) *ArtistService {
	return &ArtistService{store: store}
}

func artistID(a *db.Artist) int64 { return a.ID }

func getArtist(ctx context.Context, tx db.Tx, id int64) (*db.Artist, error) {
	a, err := tx.Artists().Get(ctx, id)
	return lookup(a, err, "artist", id)
}

// List returns every artist.
func (s *ArtistService) List(ctx context.Context) ([]db.Artist, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.Artist, error) {
		artists, err := tx.Artists().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing artists: %w", err)
		}
		return artists, nil
	})
}

// Get returns one artist.
func (s *ArtistService) Get(ctx context.Context, id int64) (*db.Artist, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Artist, error) {
		return getArtist(ctx, tx, id)
	})
}

// Songs returns the songs attributed to an artist.
func (s *ArtistService) Songs(ctx context.Context, id int64) ([]db.Song, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.Song, error) {
		if _, err := getArtist(ctx, tx, id); err != nil {
			return nil, err
		}
		songs, err := tx.Songs().ListByArtist(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing artist songs: %w", err)
		}
		return songs, nil
	})
}

// Create stores a new artist. The name must not already be taken.
func (s *ArtistService) Create(ctx context.Context, artist db.Artist) (*db.Artist, error) {
	artist.ID = 0
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Artist, error) {
		found, err := tx.Artists().FindByName(ctx, artist.Name)
		if err := unique(found, err, artistID, 0, "artist name", artist.Name); err != nil {
			return nil, err
		}
		if err := tx.Artists().Save(ctx, &artist); err != nil {
			return nil, fmt.Errorf("saving artist: %w", err)
		}
		return &artist, nil
	})
}

// Update replaces an artist's fields. The new name must not belong to another artist.
func (s *ArtistService) Update(ctx context.Context, id int64, changes db.Artist) (*db.Artist, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Artist, error) {
		artist, err := getArtist(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		found, err := tx.Artists().FindByName(ctx, changes.Name)
		if err := unique(found, err, artistID, id, "artist name", changes.Name); err != nil {
			return nil, err
		}

		artist.Name = changes.Name
		artist.Genre = changes.Genre
		artist.Country = changes.Country
		artist.BirthDate = changes.BirthDate
		if err := tx.Artists().Save(ctx, artist); err != nil {
			return nil, fmt.Errorf("saving artist: %w", err)
		}
		return artist, nil
	})
}

// Delete removes an artist that no song references.
func (s *ArtistService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx db.Tx) error {
		if _, err := getArtist(ctx, tx, id); err != nil {
			return err
		}
		songs, err := tx.Songs().ListByArtist(ctx, id)
		if err != nil {
			return fmt.Errorf("listing artist songs: %w", err)
		}
		if len(songs) > 0 {
			return conflict("artist %d still has %d song(s)", id, len(songs))
		}
		if err := tx.Artists().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting artist: %w", err)
		}
		return nil
	})
}
