package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/authz"
	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/logging"
	"github.com/justestif/go-music-platform/internal/metrics"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds listener and rate limit settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// AuthRateLimit is the number of /auth requests allowed per client IP
	// within AuthRateWindow. Zero disables the limit.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Gateway     *auth.Gateway
	Credentials *auth.Credentials
	Tokens      *auth.TokenService
	Policy      *authz.Policy

	Artists   *catalog.ArtistService
	Songs     *catalog.SongService
	Playlists *catalog.PlaylistService
	Plans     *catalog.PlanService
	Users     *catalog.UserService
}

// Server is the HTTP server for the catalog API.
type Server struct {
	cfg      ServerConfig
	router   chi.Router
	server   *http.Server
	deps     Deps
	handlers *Handlers
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Deps) (*Server, error) {
	if deps.Gateway == nil || deps.Credentials == nil || deps.Tokens == nil || deps.Policy == nil {
		return nil, errors.New("auth gateway, credentials, tokens and policy are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		deps:     deps,
		handlers: NewHandlers(deps),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.StripSlashes)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", VersionHeader},
		MaxAge:         300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errRouteNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethodNotAllowed)
	})
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)

	// Public auth routes
	s.router.Route("/auth", func(r chi.Router) {
		if s.cfg.AuthRateLimit > 0 {
			window := s.cfg.AuthRateWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(s.cfg.AuthRateLimit, window))
		}
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	})

	// Everything else requires a bearer token
	s.router.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.authorize)

		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		r.Route("/api", func(r chi.Router) {
			r.Use(requireVersion)

			r.Route("/artists", func(r chi.Router) {
				r.Get("/", h.ListArtists)
				r.Post("/", h.CreateArtist)
				r.Get("/{id}", h.GetArtist)
				r.Put("/{id}", h.UpdateArtist)
				r.Delete("/{id}", h.DeleteArtist)
				r.Get("/{id}/songs", h.ArtistSongs)
			})

			r.Route("/songs", func(r chi.Router) {
				r.Get("/", h.ListSongs)
				r.Post("/", h.CreateSong)
				r.Get("/{id}", h.GetSong)
				r.Put("/{id}", h.UpdateSong)
				r.Delete("/{id}", h.DeleteSong)
				r.Put("/{id}/artist/{artistID}", h.AssignSongArtist)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Get("/", h.ListPlaylists)
				r.Post("/", h.CreatePlaylist)
				r.Get("/{id}", h.GetPlaylist)
				r.Put("/{id}", h.UpdatePlaylist)
				r.Delete("/{id}", h.DeletePlaylist)
				r.Put("/{id}/songs/{songID}", h.AddPlaylistSong)
				r.Delete("/{id}/songs/{songID}", h.RemovePlaylistSong)
				r.Get("/{id}/songs/{songID}/artist", h.PlaylistSongArtist)
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", h.ListPlans)
				r.Post("/", h.CreatePlan)
				r.Get("/{id}", h.GetPlan)
				r.Put("/{id}", h.UpdatePlan)
				r.Delete("/{id}", h.DeletePlan)
				r.Get("/{id}/users", h.PlanSubscribers)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/subscribed", h.ListSubscribedUsers)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
				r.Put("/{id}/follower/{followerID}", h.AssignFollower)
				r.Put("/{id}/plan/{planID}", h.Subscribe)
				r.Delete("/{id}/plan", h.CancelSubscription)
				r.Put("/{id}/playlist/{playlistID}", h.AssignUserPlaylist)
				r.Get("/{id}/playlists/{playlistID}/songs/{songID}/artist", h.UserSongArtist)
			})
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
