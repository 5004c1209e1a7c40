package web

import (
	"net/http"
)

// ListArtists returns every artist.
func (h *Handlers) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artists retrieved", mapSlice(artists, newArtistResponse))
}

func (h *Handlers) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.artists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist retrieved", newArtistResponse(*artist))
}

// ArtistSongs lists the songs attributed to an artist.
func (h *Handlers) ArtistSongs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	songs, err := h.artists.Songs(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist songs retrieved", mapSlice(songs, newSongResponse))
}

func (h *Handlers) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	model, err := req.model()
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.artists.Create(r.Context(), model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "artist created", newArtistResponse(*artist))
}

func (h *Handlers) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req artistRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	model, err := req.model()
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.artists.Update(r.Context(), id, model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist updated", newArtistResponse(*artist))
}

// DeleteArtist removes an artist that no song references.
func (h *Handlers) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.artists.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist deleted", nil)
}
