package web

import (
	"net/http"

	"github.com/justestif/go-music-platform/internal/db"
)

func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "playlists retrieved", mapSlice(playlists, newPlaylistResponse))
}

func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "playlist retrieved", newPlaylistResponse(*playlist))
}

func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.playlists.Create(r.Context(), db.Playlist{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "playlist created", newPlaylistResponse(*playlist))
}

func (h *Handlers) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req playlistRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.playlists.Update(r.Context(), id, db.Playlist{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "playlist updated", newPlaylistResponse(*playlist))
}

// DeletePlaylist removes an empty playlist that no user owns.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.playlists.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "playlist deleted", nil)
}

func (h *Handlers) AddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "songID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.playlists.AddSong(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "song added", newPlaylistResponse(*playlist))
}

func (h *Handlers) RemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "songID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.playlists.RemoveSong(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "song removed", newPlaylistResponse(*playlist))
}

// PlaylistSongArtist returns the artist of a song in the playlist.
func (h *Handlers) PlaylistSongArtist(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "songID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.playlists.SongArtist(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist retrieved", newArtistResponse(*artist))
}
