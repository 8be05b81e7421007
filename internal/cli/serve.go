package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gridpress/gridpress/internal/server"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/sync"
	"github.com/gridpress/gridpress/pkg/theme"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve pages over HTTP: static live pages under /p/{page}, the editable
canvas under /edit/{page}, and the JSON editing API under /api/pages.
The server runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			st, err := c.newStore(cmd, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = st.Close(cmd.Context()) }()

			ca, err := c.newCache(cmd, cfg, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer func() { _ = ca.Close() }()

			logger := loggerFromContext(cmd.Context())
			srv := server.New(server.Options{
				Loader:   sync.NewLoader(st, logger),
				Cache:    ca,
				CacheTTL: cfg.Cache.TTL,
				Grid:     cfg.GridConfig(),
				Theme:    theme.ByName(cfg.Theme.Name),
				Registry: registry.Default(),
				Logger:   logger,
			})

			printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
			printNextStep("Open a page", fmt.Sprintf("http://%s/p/home", cfg.Server.Addr))

			err = srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
