package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/envstruct"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/internal/logging"
	"github.com/myrjola/spotfake/internal/pack"
	"github.com/myrjola/spotfake/internal/pprofserver"
	"github.com/myrjola/spotfake/internal/random"
	"github.com/myrjola/spotfake/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	store          *content.Store
	codec          *pack.Codec
	resolver       *pack.FileResolver
	hub            *gameHub
	htmx           *htmx.HTMX
	sessionLength  time.Duration
}

type config struct {
	Addr           string `env:"SPOTFAKE_ADDR" envDefault:"localhost:4000"`
	PprofPort      string `env:"SPOTFAKE_PPROF_PORT" envDefault:":6060"`
	SQLiteURL      string `env:"SPOTFAKE_SQLITE_URL" envDefault:"./spotfake.sqlite"`
	ManifestPath   string `env:"SPOTFAKE_MANIFEST_PATH" envDefault:"./spotfake-library.json"`
	MediaDir       string `env:"SPOTFAKE_MEDIA_DIR" envDefault:"./media"`
	SessionSeconds int    `env:"SPOTFAKE_SESSION_SECONDS" envDefault:"60"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse config")
	}

	// pprof listens on loopback only so that it's not open to the world.
	pprofserver.Launch(ctx, cfg.PprofPort, logger)

	db, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	store := content.NewStore(db, cfg.ManifestPath, logger)
	resolver := pack.NewFileResolver(cfg.MediaDir)
	codec := pack.NewCodec(resolver, clock.System(), logger)

	hub := newGameHub(clock.System(), random.NewSource(), logger)
	go hub.ticks.Start()
	defer hub.ticks.Stop()

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		store:          store,
		codec:          codec,
		resolver:       resolver,
		hub:            hub,
		htmx:           htmx.New(),
		sessionLength:  time.Duration(cfg.SessionSeconds) * time.Second,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// The .env file is optional, it's only used for local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
