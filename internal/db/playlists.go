package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// playlistRepo handles playlist and playlist_songs database operations.
type playlistRepo struct {
	q querier
}

// List retrieves all playlists ordered by ID.
func (r *playlistRepo) List(ctx context.Context) ([]Playlist, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM playlists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *playlistRepo) getWhere(ctx context.Context, where string, arg any) (*Playlist, error) {
	var p Playlist
	err := r.q.QueryRow(ctx, `SELECT id, name FROM playlists WHERE `+where+` = $1`, arg).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}
	return &p, nil
}

// Get retrieves a playlist by ID.
func (r *playlistRepo) Get(ctx context.Context, id int64) (*Playlist, error) {
	return r.getWhere(ctx, "id", id)
}

// FindByName retrieves a playlist by exact name.
func (r *playlistRepo) FindByName(ctx context.Context, name string) (*Playlist, error) {
	return r.getWhere(ctx, "name", name)
}

// Save inserts or renames a playlist.
func (r *playlistRepo) Save(ctx context.Context, playlist *Playlist) error {
	if playlist.ID == 0 {
		err := r.q.QueryRow(ctx,
			`INSERT INTO playlists (name) VALUES ($1) RETURNING id`,
			playlist.Name,
		).Scan(&playlist.ID)
		if err != nil {
			return fmt.Errorf("inserting playlist: %w", classify(err))
		}
		return nil
	}

	result, err := r.q.Exec(ctx, `UPDATE playlists SET name = $2 WHERE id = $1`, playlist.ID, playlist.Name)
	if err != nil {
		return fmt.Errorf("updating playlist: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a playlist by ID.
func (r *playlistRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SongIDs returns the IDs of the songs in a playlist.
func (r *playlistRepo) SongIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT song_id FROM playlist_songs WHERE playlist_id = $1 ORDER BY song_id`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying playlist songs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scanning playlist songs: %w", err)
	}
	return ids, nil
}

// HasSong reports whether the song is in the playlist.
func (r *playlistRepo) HasSong(ctx context.Context, playlistID, songID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, playlistID, songID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking playlist song: %w", err)
	}
	return exists, nil
}

// AddSong links a song to a playlist.
func (r *playlistRepo) AddSong(ctx context.Context, playlistID, songID int64) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO playlist_songs (playlist_id, song_id) VALUES ($1, $2)`,
		playlistID, songID,
	)
	if err != nil {
		return fmt.Errorf("adding playlist song: %w", classify(err))
	}
	return nil
}

// RemoveSong unlinks a song from a playlist.
func (r *playlistRepo) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	result, err := r.q.Exec(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`,
		playlistID, songID,
	)
	if err != nil {
		return fmt.Errorf("removing playlist song: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountContaining returns how many playlists include the song.
func (r *playlistRepo) CountContaining(ctx context.Context, songID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM playlist_songs WHERE song_id = $1`, songID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting playlists for song: %w", err)
	}
	return count, nil
}
