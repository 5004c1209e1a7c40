package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/config"
	"github.com/justestif/go-music-platform/internal/db"
	"github.com/justestif/go-music-platform/internal/db/memory"
	"github.com/justestif/go-music-platform/internal/logging"
)

// adminPasswordEnv supplies admin passwords without putting them on the
// command line.
const adminPasswordEnv = "MUSIC_ADMIN_PASSWORD"

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "music-platform",
		Short:         "Music catalog API server.",
		Long:          "Serves the artists, songs, playlists, membership plans and users API behind token authentication.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: $"+config.PathEnvVar+" or ./config.yaml)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd())
	return root
}

// app holds everything built from configuration.
type app struct {
	cfg   *config.Config
	store db.Store
	pg    *db.DB // nil for the memory driver

	hasher      *auth.Hasher
	credentials *auth.Credentials
	tokens      *auth.TokenService
	gateway     *auth.Gateway
}

// openApp loads configuration, initializes logging and opens the store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	a := &app{cfg: cfg}
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logging.Warn().Msg("using in-memory store; data is lost on exit")
		a.store = memory.New()
	case config.DriverPostgres:
		pg, err := db.New(ctx, cfg.Database.URL, db.WithMaxConns(cfg.Database.MaxConns))
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.pg = pg
		a.store = pg
	}

	a.hasher = auth.NewHasher(cfg.Security.BcryptCost)
	a.credentials = auth.NewCredentials(a.store, a.hasher)

	var opts []auth.TokenOption
	if cfg.Security.TokenIssuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.Security.TokenIssuer))
	}
	a.tokens, err = auth.NewTokenService(cfg.Security.JWTSecrets, cfg.Security.TokenTTL, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	a.gateway = auth.NewGateway(a.store, a.hasher, a.credentials, a.tokens)
	return a, nil
}

func (a *app) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
}

// migrate applies the schema when the store is PostgreSQL.
func (a *app) migrate(ctx context.Context) error {
	if a.pg == nil {
		return nil
	}
	if err := a.pg.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	logging.Info().Msg("database schema applied")
	return nil
}

func (a *app) services() (*catalog.ArtistService, *catalog.SongService, *catalog.PlaylistService, *catalog.PlanService, *catalog.UserService) {
	return catalog.NewArtistService(a.store),
		catalog.NewSongService(a.store),
		catalog.NewPlaylistService(a.store),
		catalog.NewPlanService(a.store),
		catalog.NewUserService(a.store, a.hasher)
}
