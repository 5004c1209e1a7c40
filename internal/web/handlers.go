package web

import (
	"net/http"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/logging"
	"github.com/justestif/go-music-platform/internal/metrics"
)

// Handlers holds HTTP handlers and their dependencies.
type Handlers struct {
	gateway   *auth.Gateway
	artists   artistService
	songs     songService
	playlists playlistService
	plans     planService
	users     userService
}

// NewHandlers creates handlers over the given services.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		gateway:   deps.Gateway,
		artists:   deps.Artists,
		songs:     deps.Songs,
		playlists: deps.Playlists,
		plans:     deps.Plans,
		users:     deps.Users,
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login exchanges a username and password for a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.gateway.Login(r.Context(), req.Username, req.Password)
	metrics.RecordAuth("login", err == nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("login succeeded")
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Register creates a USER identity and returns a bearer token for it.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.gateway.Register(r.Context(), auth.Registration{
		Handle:    req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	metrics.RecordAuth("register", err == nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("identity registered")
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}
