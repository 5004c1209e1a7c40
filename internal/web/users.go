package web

import (
	"net/http"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "users retrieved", mapSlice(users, newUserResponse))
}

func (h *Handlers) ListSubscribedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListSubscribed(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "subscribed users retrieved", mapSlice(users, newUserResponse))
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "user retrieved", newUserResponse(*user))
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "user created", newUserResponse(*user))
}

// UpdateUser replaces profile fields and the password. Follower, plan and
// playlist links are only changed through their own endpoints.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req userRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "user updated", newUserResponse(*user))
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "user deleted", nil)
}

func (h *Handlers) AssignFollower(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "followerID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.AssignFollower(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "follower assigned", newUserResponse(*user))
}

func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "planID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Subscribe(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "subscription started", newUserResponse(*user))
}

func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "subscription cancelled", newUserResponse(*user))
}

func (h *Handlers) AssignUserPlaylist(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "playlistID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.AssignPlaylist(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "playlist assigned", newUserResponse(*user))
}

// UserSongArtist returns the artist of a song in the user's own playlist.
func (h *Handlers) UserSongArtist(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "playlistID", "songID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.users.SongArtist(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "artist retrieved", newArtistResponse(*artist))
}
