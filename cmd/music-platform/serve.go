package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/authz"
	"github.com/justestif/go-music-platform/internal/logging"
	"github.com/justestif/go-music-platform/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		autoMigrate bool
		adminUser   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server.",
		Example: "music-platform serve --migrate\n" +
			adminPasswordEnv + "=changeme music-platform serve --admin-user root",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if autoMigrate {
				if err := a.migrate(ctx); err != nil {
					return err
				}
			}

			if adminUser != "" {
				password := os.Getenv(adminPasswordEnv)
				if password == "" {
					return fmt.Errorf("--admin-user requires %s", adminPasswordEnv)
				}
				if _, err := a.gateway.EnsureAdmin(ctx, auth.Registration{Handle: adminUser, Password: password}); err != nil {
					return err
				}
				logging.Info().Str("username", adminUser).Msg("admin account ready")
			}

			policy, err := loadPolicy(a.cfg.Security.PolicyFile)
			if err != nil {
				return fmt.Errorf("loading access policy: %w", err)
			}

			artists, songs, playlists, plans, users := a.services()
			sc := a.cfg.Server
			server, err := web.NewServer(web.ServerConfig{
				Addr:            sc.Addr,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				IdleTimeout:     sc.IdleTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
				CORSOrigins:     sc.CORSOrigins,
				AuthRateLimit:   a.cfg.Security.AuthRateLimit,
				AuthRateWindow:  a.cfg.Security.AuthRateWindow,
			}, web.Deps{
				Gateway:     a.gateway,
				Credentials: a.credentials,
				Tokens:      a.tokens,
				Policy:      policy,
				Artists:     artists,
				Songs:       songs,
				Playlists:   playlists,
				Plans:       plans,
				Users:       users,
			})
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			return server.Run()
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply the database schema before serving")
	cmd.Flags().StringVar(&adminUser, "admin-user", "", "create or promote this admin account at startup (password from $"+adminPasswordEnv+")")
	return cmd
}

func loadPolicy(path string) (*authz.Policy, error) {
	if path == "" {
		return authz.NewPolicy()
	}
	logging.Info().Str("path", path).Msg("loading access policy from file")
	return authz.NewPolicyFromFile(path)
}
