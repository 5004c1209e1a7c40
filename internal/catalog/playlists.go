package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// PlaylistService manages playlists and their song membership.
type PlaylistService struct {
	store db.Store
}

// NewPlaylistService creates a PlaylistService.
func NewPlaylistService(store db.Store) *PlaylistService {
	return &PlaylistService{store: store}
}

// PlaylistDetail is a playlist together with the IDs of its songs.
type PlaylistDetail struct {
	db.Playlist
	SongIDs []int64
}

func playlistID(p *db.Playlist) int64 { return p.ID }

func getPlaylist(ctx context.Context, tx db.Tx, id int64) (*db.Playlist, error) {
	p, err := tx.Playlists().Get(ctx, id)
	return lookup(p, err, "playlist", id)
}

func detail(ctx context.Context, tx db.Tx, p db.Playlist) (*PlaylistDetail, error) {
	ids, err := tx.Playlists().SongIDs(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing playlist songs: %w", err)
	}
	return &PlaylistDetail{Playlist: p, SongIDs: ids}, nil
}

// List returns every playlist with its songs.
func (s *PlaylistService) List(ctx context.Context) ([]PlaylistDetail, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]PlaylistDetail, error) {
		playlists, err := tx.Playlists().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
		out := make([]PlaylistDetail, 0, len(playlists))
		for _, p := range playlists {
			d, err := detail(ctx, tx, p)
			if err != nil {
				return nil, err
			}
			out = append(out, *d)
		}
		return out, nil
	})
}

// Get returns one playlist with its songs.
func (s *PlaylistService) Get(ctx context.Context, id int64) (*PlaylistDetail, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*PlaylistDetail, error) {
		p, err := getPlaylist(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		return detail(ctx, tx, *p)
	})
}

// Create stores a new, empty playlist. The name must not already be taken.
func (s *PlaylistService) Create(ctx context.Context, playlist db.Playlist) (*PlaylistDetail, error) {
	playlist.ID = 0
	return inTx(ctx, s.store, func(tx db.Tx) (*PlaylistDetail, error) {
		found, err := tx.Playlists().FindByName(ctx, playlist.Name)
		if err := unique(found, err, playlistID, 0, "playlist name", playlist.Name); err != nil {
			return nil, err
		}
		if err := tx.Playlists().Save(ctx, &playlist); err != nil {
			return nil, fmt.Errorf("saving playlist: %w", err)
		}
		return &PlaylistDetail{Playlist: playlist, SongIDs: []int64{}}, nil
	})
}

// Update renames a playlist. The new name must not belong to another playlist.
func (s *PlaylistService) Update(ctx context.Context, id int64, changes db.Playlist) (*PlaylistDetail, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*PlaylistDetail, error) {
		p, err := getPlaylist(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		found, err := tx.Playlists().FindByName(ctx, changes.Name)
		if err := unique(found, err, playlistID, id, "playlist name", changes.Name); err != nil {
			return nil, err
		}
		p.Name = changes.Name
		if err := tx.Playlists().Save(ctx, p); err != nil {
			return nil, fmt.Errorf("saving playlist: %w", err)
		}
		return detail(ctx, tx, *p)
	})
}

// Delete removes an empty playlist that no user owns.
func (s *PlaylistService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx db.Tx) error {
		if _, err := getPlaylist(ctx, tx, id); err != nil {
			return err
		}
		ids, err := tx.Playlists().SongIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("listing playlist songs: %w", err)
		}
		if len(ids) > 0 {
			return conflict("playlist %d still has %d song(s)", id, len(ids))
		}
		owner, err := tx.Users().FindByPlaylist(ctx, id)
		switch {
		case err == nil:
			return conflict("playlist %d is owned by user %d", id, owner.ID)
		case !errors.Is(err, db.ErrNotFound):
			return fmt.Errorf("finding playlist owner: %w", err)
		}
		if err := tx.Playlists().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting playlist: %w", err)
		}
		return nil
	})
}

// AddSong puts a song in a playlist. A song appears in a playlist at most once.
func (s *PlaylistService) AddSong(ctx context.Context, playlistID, songID int64) (*PlaylistDetail, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*PlaylistDetail, error) {
		p, err := getPlaylist(ctx, tx, playlistID)
		if err != nil {
			return nil, err
		}
		if _, err := getSong(ctx, tx, songID); err != nil {
			return nil, err
		}
		present, err := tx.Playlists().HasSong(ctx, playlistID, songID)
		if err != nil {
			return nil, fmt.Errorf("checking playlist song: %w", err)
		}
		if present {
			return nil, conflict("song %d is already in playlist %d", songID, playlistID)
		}
		if err := tx.Playlists().AddSong(ctx, playlistID, songID); err != nil {
			return nil, fmt.Errorf("adding song: %w", err)
		}
		return detail(ctx, tx, *p)
	})
}

// RemoveSong takes a song out of a playlist.
func (s *PlaylistService) RemoveSong(ctx context.Context, playlistID, songID int64) (*PlaylistDetail, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*PlaylistDetail, error) {
		p, err := getPlaylist(ctx, tx, playlistID)
		if err != nil {
			return nil, err
		}
		if _, err := getSong(ctx, tx, songID); err != nil {
			return nil, err
		}
		present, err := tx.Playlists().HasSong(ctx, playlistID, songID)
		if err != nil {
			return nil, fmt.Errorf("checking playlist song: %w", err)
		}
		if !present {
			return nil, conflict("song %d is not in playlist %d", songID, playlistID)
		}
		if err := tx.Playlists().RemoveSong(ctx, playlistID, songID); err != nil {
			return nil, fmt.Errorf("removing song: %w", err)
		}
		return detail(ctx, tx, *p)
	})
}

// SongArtist returns the artist of a song, provided the song is in the playlist.
func (s *PlaylistService) SongArtist(ctx context.Context, playlistID, songID int64) (*db.Artist, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Artist, error) {
		if _, err := getPlaylist(ctx, tx, playlistID); err != nil {
			return nil, err
		}
		return artistInPlaylist(ctx, tx, playlistID, songID)
	})
}

// artistInPlaylist resolves the artist of a song that must be a member of the playlist.
func artistInPlaylist(ctx context.Context, tx db.Tx, playlistID, songID int64) (*db.Artist, error) {
	present, err := tx.Playlists().HasSong(ctx, playlistID, songID)
	if err != nil {
		return nil, fmt.Errorf("checking playlist song: %w", err)
	}
	if !present {
		return nil, notFound("song %d is not in playlist %d", songID, playlistID)
	}
	song, err := getSong(ctx, tx, songID)
	if err != nil {
		return nil, err
	}
	if song.ArtistID == nil {
		return nil, notFound("song %d has no artist", songID)
	}
	return getArtist(ctx, tx, *song.ArtistID)
}
