package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"

	"aidocs/internal/database"
	"aidocs/internal/events"
	"aidocs/internal/logging"
	"aidocs/internal/repositories"
	"aidocs/internal/services"
	"aidocs/internal/telemetry"
	"aidocs/internal/utils"
)

// App owns the process resources behind every command.
type App struct {
	ctx       context.Context
	settings  settings
	root      string
	log       zerolog.Logger
	svc       *services.Services
	logClose  io.Closer
	dbClose   func() error
	traceStop func(context.Context) error
	lock      *services.RunLock
}

func NewApp() *App {
	return &App{log: zerolog.Nop()}
}

// startup resolves the project root and wires the services. The run ledger
// and the keyring are optional: failures there are logged and the
// commands run without them.
func (a *App) startup(ctx context.Context, s settings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = ctx
	a.settings = s

	root := s.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if found, err := utils.FindProjectRoot(cwd); err == nil {
			root = found
		} else {
			root = cwd
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	a.root = abs

	log, closer, err := logging.New(logging.Options{Level: s.LogLevel, JSON: s.LogJSON, File: s.LogFile})
	if err != nil {
		return err
	}
	a.log = log.With().Str("root", a.root).Logger()
	a.logClose = closer

	if err := utils.LoadEnv(a.root); err != nil {
		a.log.Warn().Err(err).Msg("failed to load .env")
	}

	tracer, stop, err := telemetry.Setup(s.Trace, os.Stderr)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	a.traceStop = stop

	var dbs *services.DbServices
	dbPath := s.DB
	if dbPath == "" {
		dbPath = database.GetDefaultDBPath(a.root)
	}
	db, err := database.Init(database.Config{Path: dbPath, LogLevel: logger.Warn, Logger: a.log})
	if err != nil {
		a.log.Warn().Err(err).Str("db", dbPath).Msg("run history disabled")
	} else {
		dbs = services.NewDbServices(db)
		if sqlDB, err := db.DB(); err == nil {
			a.dbClose = sqlDB.Close
		}
	}

	keys := services.NewKeyringService(nil, nil)
	if dir, err := os.UserConfigDir(); err == nil {
		if ring, err := services.OpenKeyring(filepath.Join(dir, "aidocs")); err == nil {
			keys = services.NewKeyringService(ring, nil)
		} else {
			a.log.Debug().Err(err).Msg("keyring unavailable, using environment keys only")
		}
	}

	var settingsRepo repositories.ModelSettingRepository
	var runs repositories.RunRepository
	if dbs != nil {
		settingsRepo = dbs.ModelSettings
		runs = dbs.Runs
	}
	catalog := services.NewModelConfigService(settingsRepo)
	if err := catalog.Load(ctx); err != nil {
		return err
	}

	sources, err := services.NewWorkspaceSources(a.root)
	if err != nil {
		return err
	}

	rt := &services.Runtime{
		Config:     services.NewConfigService(repositories.NewConfigRepository(a.root, s.Config)),
		Docs:       repositories.NewDocsRepository(a.root, nil),
		Sources:    sources,
		Context:    services.NewContextResolver(a.root),
		Generators: services.NewGeneratorResolver(catalog, keys, nil, a.log),
		Git:        services.NewGitService(),
		Runs:       runs,
		Sink:       events.Multi(events.NewLogSink(a.log), events.NewTracingSink(tracer)),
		Log:        a.log,
	}
	a.svc = services.NewServices(rt, catalog, keys)
	return nil
}

// acquireRunLock takes the repository lease for plan, generate and audit.
func (a *App) acquireRunLock() error {
	lock := services.NewRunLock(filepath.Join(a.root, filepath.FromSlash(repositories.RunLockFile)))
	if err := lock.Acquire(a.ctx, a.settings.LockTimeout); err != nil {
		return err
	}
	a.lock = lock
	return nil
}

func (a *App) shutdown(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.lock != nil {
		if err := a.lock.Release(); err != nil {
			a.log.Warn().Err(err).Msg("failed to release run lock")
		}
	}
	if a.traceStop != nil {
		if err := a.traceStop(ctx); err != nil {
			a.log.Warn().Err(err).Msg("failed to flush traces")
		}
	}
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
	if a.logClose != nil {
		a.logClose.Close()
	}
}
