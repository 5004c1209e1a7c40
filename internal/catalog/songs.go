package catalog

import (
	"context"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// SongService manages songs and their artist attribution.
type SongService struct {
	store db.Store
}

// NewSongService creates a SongService.
func NewSongService(store db.Store) *SongService {
	return &SongService{store: store}
}

func getSong(ctx context.Context, tx db.Tx, id int64) (*db.Song, error) {
	s, err := tx.Songs().Get(ctx, id)
	return lookup(s, err, "song", id)
}

// List returns every song.
func (s *SongService) List(ctx context.Context) ([]db.Song, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.Song, error) {
		songs, err := tx.Songs().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing songs: %w", err)
		}
		return songs, nil
	})
}

// Get returns one song.
func (s *SongService) Get(ctx context.Context, id int64) (*db.Song, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Song, error) {
		return getSong(ctx, tx, id)
	})
}

// Create stores a new song without an artist. Titles need not be unique.
func (s *SongService) Create(ctx context.Context, song db.Song) (*db.Song, error) {
	song.ID = 0
	song.ArtistID = nil
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Song, error) {
		if err := tx.Songs().Save(ctx, &song); err != nil {
			return nil, fmt.Errorf("saving song: %w", err)
		}
		return &song, nil
	})
}

// Update replaces a song's own fields. The artist reference is left as is.
func (s *SongService) Update(ctx context.Context, id int64, changes db.Song) (*db.Song, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Song, error) {
		song, err := getSong(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		song.Title = changes.Title
		song.Duration = changes.Duration
		song.Genre = changes.Genre
		song.ReleaseDate = changes.ReleaseDate
		if err := tx.Songs().Save(ctx, song); err != nil {
			return nil, fmt.Errorf("saving song: %w", err)
		}
		return song, nil
	})
}

// Delete removes a song that has no artist and belongs to no playlist.
func (s *SongService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx db.Tx) error {
		song, err := getSong(ctx, tx, id)
		if err != nil {
			return err
		}
		if song.ArtistID != nil {
			return conflict("song %d is assigned to artist %d", id, *song.ArtistID)
		}
		n, err := tx.Playlists().CountContaining(ctx, id)
		if err != nil {
			return fmt.Errorf("counting playlists for song: %w", err)
		}
		if n > 0 {
			return conflict("song %d belongs to %d playlist(s)", id, n)
		}
		if err := tx.Songs().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting song: %w", err)
		}
		return nil
	})
}

// AssignArtist attributes a song to an artist. A song's artist can be set once.
func (s *SongService) AssignArtist(ctx context.Context, songID, artistID int64) (*db.Song, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Song, error) {
		song, err := getSong(ctx, tx, songID)
		if err != nil {
			return nil, err
		}
		if _, err := getArtist(ctx, tx, artistID); err != nil {
			return nil, err
		}
		if song.ArtistID != nil {
			return nil, conflict("song %d already has artist %d", songID, *song.ArtistID)
		}
		song.ArtistID = ref(artistID)
		if err := tx.Songs().Save(ctx, song); err != nil {
			return nil, fmt.Errorf("saving song: %w", err)
		}
		return song, nil
	})
}
