package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/config"
	httpapi "github.com/tbourn/campus-hub/internal/http"
	"github.com/tbourn/campus-hub/internal/observability"
	"github.com/tbourn/campus-hub/internal/realtime"
	"github.com/tbourn/campus-hub/internal/repo"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live feed",
		Long: `Run the confession board HTTP API, the /ws live feed and the
background idempotency purge. The schema is migrated on startup unless
--skip-migrate is given. SIGINT or SIGTERM drains in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts.Config, rootOpts.Version, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on startup")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, version string, migrate bool) error {
	if cfg.Session.Ephemeral {
		log.Warn().Msg("SESSION_SECRET not set; device sessions will not survive a restart")
	}
	if cfg.OwnerToken.Ephemeral {
		log.Warn().Msg("OWNER_TOKEN_SECRET not set; owner tokens will not survive a restart")
	}
	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set; the admin API rejects every request")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		fctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(fctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()

	hub := realtime.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run(ctx)
	go purgeLoop(ctx, db, purgeInterval)

	if err := httpapi.RegisterRoutes(r, db, hub, cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Str("api", cfg.APIBasePath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// purgeLoop deletes expired idempotency records every interval until ctx ends.
func purgeLoop(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			purgeExpired(ctx, db, now)
		}
	}
}

func purgeExpired(ctx context.Context, db *gorm.DB, now time.Time) int64 {
	n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
	if err != nil {
		log.Warn().Err(err).Msg("purge idempotency records")
		return 0
	}
	if n > 0 {
		log.Debug().Int64("purged", n).Msg("expired idempotency records removed")
	}
	return n
}
