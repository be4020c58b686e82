package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/client/authapi"
	"github.com/kisaanconnect/marketplace/internal/core/events"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
	"github.com/kisaanconnect/marketplace/internal/core/service"
	"github.com/kisaanconnect/marketplace/internal/core/session"
	"github.com/kisaanconnect/marketplace/internal/infrastructure/config"
	redisdb "github.com/kisaanconnect/marketplace/internal/infrastructure/db/redis"
	"github.com/kisaanconnect/marketplace/internal/infrastructure/storage"
	"github.com/kisaanconnect/marketplace/internal/ui"
)

const sessionPrefix = "kisaan:session"

// app is one process's view of the client: a session, the bus that
// announces its changes, and the pieces that render it.
type app struct {
	cfg      *config.ClientConfig
	log      zerolog.Logger
	bus      *events.Bus
	sessions *service.SessionService
	auth     *service.Authenticator
	router   *ui.Router
	nav      *ui.NavBar

	file  *storage.FileStore
	relay *redisdb.Relay

	closers []func()
}

func newApp(ctx context.Context, cfg *config.ClientConfig, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, bus: events.NewBus(log)}

	kv, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.sessions = service.NewSessionService(session.NewStore(kv, log), a.bus, log)
	if a.relay != nil {
		a.sessions.AnnounceWith(a.relay)
	}
	remote := authapi.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	a.auth = service.NewAuthenticator(remote, a.sessions, log)
	a.router = ui.NewRouter(a.sessions, ui.DefaultRoutes(), log)
	a.nav = ui.NewNavBar(a.sessions)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (ports.KeyValueStore, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil

	case config.StorageRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.relay = redisdb.NewRelay(rdb, a.bus, a.log)
		return storage.NewRedisStore(rdb, sessionPrefix), nil

	default:
		fs, err := storage.NewFileStore(a.cfg.SessionFile, a.log)
		if err != nil {
			return nil, err
		}
		a.file = fs
		return fs, nil
	}
}

// Follow delivers session changes made by other processes to the local bus
// until ctx is cancelled.
func (a *app) Follow(ctx context.Context) error {
	if !a.cfg.Watch {
		return nil
	}
	switch {
	case a.relay != nil:
		return a.relay.Listen(ctx)
	case a.file != nil:
		return a.file.Watch(ctx, a.bus.Notify)
	default:
		return fmt.Errorf("storage %q is private to this process; nothing to follow", a.cfg.Storage)
	}
}

// Close releases storage connections, most recent first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
