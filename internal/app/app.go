// Package app wires configuration, storage and collaborators into a ready
// inbox service. The HTTP layer embedding this service lives outside this
// module.
package app

import (
	"github.com/mbalthasar/stationpix/internal/cache"
	"github.com/mbalthasar/stationpix/internal/config"
	"github.com/mbalthasar/stationpix/internal/database"
	"github.com/mbalthasar/stationpix/internal/inbox"
	"github.com/mbalthasar/stationpix/internal/logging"
	"github.com/mbalthasar/stationpix/internal/monitor"
	"github.com/mbalthasar/stationpix/internal/photostorage"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	Logger *logging.Logger
	Cache  cache.Cache
	Inbox  *inbox.Service

	db *database.DB
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	app.Logger = app.initLogger()
	app.Cache = app.initCache()

	db, err := database.New(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: database.DefaultConfig().ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	app.db = db

	storage, err := photostorage.New(
		cfg.Storage.InboxDir,
		cfg.Storage.ProcessedDir,
		cfg.Storage.RejectedDir,
		cfg.Storage.PhotosDir,
		cfg.Inbox.MaxPhotoSize,
		app.Logger,
	)
	if err != nil {
		return nil, err
	}

	app.Inbox = inbox.NewService(inbox.Deps{
		Stations:     database.NewStationStore(db),
		Photos:       database.NewPhotoStore(db),
		Countries:    database.NewCountryStore(db),
		Users:        database.NewUserStore(db),
		Entries:      database.NewInboxStore(db),
		Storage:      storage,
		Monitor:      app.initMonitor(),
		Announcer:    app.initAnnouncer(),
		Cache:        app.Cache,
		InboxBaseURL: cfg.Inbox.BaseURL,
		Logger:       app.Logger,
	})

	return app, nil
}

// Shutdown releases database and logging resources.
func (a *App) Shutdown() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}
	_ = a.Logger.Sync()
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "stationpix:",
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

func (a *App) initMonitor() monitor.Monitor {
	if len(a.Config.Notify.MonitorURLs) == 0 {
		a.Logger.Info("No monitor URLs configured, moderation messages go to the log")
		return monitor.NewLog(a.Logger)
	}
	m, err := monitor.NewShoutrrr(a.Config.Notify.MonitorURLs, a.Logger)
	if err != nil {
		a.Logger.Error("Failed to create monitor, falling back to log", logging.WithField("error", err.Error()))
		return monitor.NewLog(a.Logger)
	}
	return m
}

func (a *App) initAnnouncer() monitor.Announcer {
	if len(a.Config.Notify.AnnounceURLs) == 0 {
		return monitor.NopAnnouncer{}
	}
	announcer, err := monitor.NewShoutrrrAnnouncer(a.Config.Notify.AnnounceURLs, a.Config.Inbox.PhotoBaseURL)
	if err != nil {
		a.Logger.Error("Failed to create photo announcer, announcements disabled", logging.WithField("error", err.Error()))
		return monitor.NopAnnouncer{}
	}
	return announcer
}
