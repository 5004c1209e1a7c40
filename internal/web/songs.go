package web

import (
	"net/http"
)

func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "songs retrieved", mapSlice(songs, newSongResponse))
}

func (h *Handlers) GetSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.songs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "song retrieved", newSongResponse(*song))
}

func (h *Handlers) CreateSong(w http.ResponseWriter, r *http.Request) {
	var req songRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	model, err := req.model()
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.songs.Create(r.Context(), model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "song created", newSongResponse(*song))
}

// UpdateSong replaces a song's fields; its artist link is left alone.
func (h *Handlers) UpdateSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req songRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	model, err := req.model()
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.songs.Update(r.Context(), id, model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "song updated", newSongResponse(*song))
}

func (h *Handlers) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.songs.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "song deleted", nil)
}

// AssignSongArtist links a song to its artist. A song's artist can only be
// set once.
func (h *Handlers) AssignSongArtist(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "artistID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.songs.AssignArtist(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist assigned", newSongResponse(*song))
}
