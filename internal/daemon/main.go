// Package daemon assembles the services and runs the web server, the backup
// scheduler and the session housekeeping until a shutdown signal arrives.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/backup"
	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db"
	"github.com/shopadmin/shop-admin/internal/mail"
	"github.com/shopadmin/shop-admin/internal/media"
	"github.com/shopadmin/shop-admin/internal/pages"
	"github.com/shopadmin/shop-admin/internal/secret"
	"github.com/shopadmin/shop-admin/internal/settings"
	"github.com/shopadmin/shop-admin/internal/web"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/statestore"
)

const purgeInterval = time.Hour

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	scheduler  *backup.Scheduler
	sessions   *auth.Sessions
}

// Open connects and migrates the database.
func Open(cfg *config.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = db.Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return conn, nil
}

// NewBackupService builds the backup service for conn.
func NewBackupService(cfg *config.Config, conn *gorm.DB, policy backup.Policy) *backup.Service {
	return backup.New(conn, backup.NewDumper(cfg, conn), policy, cfg.Backup.Dir, cfg.Backup.Timeout)
}

// New creates a Daemon with every service wired.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, handler.ErrNilDeps
	}

	conn, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(context.Background(), cfg, conn); err != nil {
		return nil, err
	}

	deps, err := build(context.Background(), cfg, conn)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, deps)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Daemon{
		cfg:        cfg,
		db:         conn,
		webService: webService,
		scheduler:  deps.Scheduler,
		sessions:   deps.Auth.Sessions(),
	}, nil
}

// build creates the services the handlers depend on.
func build(ctx context.Context, cfg *config.Config, conn *gorm.DB) (*handler.Deps, error) {
	var (
		box *secret.Box
		err error
	)

	if cfg.Crypto.EncryptionKey != "" {
		if box, err = secret.New(cfg.Crypto.EncryptionKey, cfg.Crypto.EncryptionIV); err != nil {
			return nil, fmt.Errorf("failed to create secret box: %w", err)
		}
	} else {
		log.Warn().Msg("no encryption key configured: email passwords are stored in plain text")
	}

	store, err := media.New(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to create media store: %w", err)
	}

	settingsService := settings.New(conn, store)

	mailer, err := mail.New(conn, box, settingsService, cfg.Webserver.FrontendURL)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var ldapProvider *auth.LDAPProvider
	if cfg.Auth.LDAP.Enabled {
		if ldapProvider, err = auth.NewLDAPProvider(cfg.Auth.LDAP); err != nil {
			return nil, fmt.Errorf("failed to create ldap provider: %w", err)
		}
	}

	sessions := auth.NewSessions(conn, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)).
		ExpireIdle(settingsService)
	authService := auth.NewService(conn, sessions, mailer, settingsService, store, ldapProvider, auth.Options{
		Issuer:                   cfg.Title,
		OTPTTL:                   cfg.Auth.OTPTTL,
		ResetCodeTTL:             cfg.Auth.ResetCodeTTL,
		VerificationTTL:          cfg.Auth.VerificationTTL,
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
	})

	deps := &handler.Deps{
		Cfg:        cfg,
		DB:         conn,
		Auth:       authService,
		States:     statestore.New(statestore.Open(cfg), cfg.Auth.OAuthStateTTL),
		Settings:   settingsService,
		Pages:      pages.New(conn, cfg.Webserver.FrontendURL),
		Mailer:     mailer,
		MailConfig: mail.NewConfigStore(conn, box),
	}

	if cfg.Auth.Google.Enabled {
		google, errGoogle := auth.NewGoogleProvider(ctx, cfg.Auth.Google)
		if errGoogle != nil {
			return nil, fmt.Errorf("failed to create google provider: %w", errGoogle)
		}

		deps.Google = google
	}

	deps.Backups = NewBackupService(cfg, conn, settingsService)
	deps.Scheduler = backup.NewScheduler(deps.Backups, cfg.Backup.Timeout, cfg.DevMode)

	settingsService.OnGlobalChange(deps.Scheduler.Reconfigure)

	gs, err := settingsService.Global(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global settings: %w", err)
	}

	deps.Scheduler.Reconfigure(*gs)

	return deps, nil
}

// Start runs the daemon until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.housekeeping(ctx)

	listenErr := make(chan error, 1)

	go func() {
		listenErr <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Msg("web service started")

	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	var err error

	select {
	case sig := <-irqSig:
		log.Info().Msgf("shutdown request (signal: %v)", sig)
		d.webService.Shutdown()
	case err = <-listenErr:
		if err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}

	cancel()

	stopCtx, stop := context.WithTimeout(context.Background(), d.cfg.Backup.Timeout)
	defer stop()

	d.scheduler.Stop(stopCtx)

	if sqlDB, errDB := d.db.DB(); errDB == nil {
		_ = sqlDB.Close()
	}

	return err
}

// housekeeping removes expired sessions.
func (d *Daemon) housekeeping(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		n, err := d.sessions.PurgeExpired(ctx)

		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			log.Warn().Err(err).Msg("failed to purge expired sessions")
		case n > 0:
			log.Info().Int64("count", n).Msg("purged expired sessions")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
