package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dylan-park/LastMile/internal/config"
	"github.com/dylan-park/LastMile/internal/server"
	"github.com/dylan-park/LastMile/internal/store"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig func() config.Config
	buildStore func(config.Config) (store.Provider, error)
	notify     func(chan<- os.Signal, ...os.Signal)
	run        func(context.Context, config.Config, store.Provider, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig: config.Load,
		buildStore: buildStore,
		notify:     signal.Notify,
		run:        Run,
	}
}

// buildStore picks the storage mode: per-session in-memory databases
// when no DATABASE_URL is set, a shared Postgres otherwise.
func buildStore(cfg config.Config) (store.Provider, error) {
	if cfg.DemoMode() {
		var rdb *redis.Client
		if cfg.RedisAddr != "" {
			rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			})
		}
		idleTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
		return store.NewDemoProvider(rdb, idleTTL), nil
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return store.NewSingleProvider(context.Background(), db)
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	provider, err := deps.buildStore(cfg)
	if err != nil {
		log.Printf("store setup failed: %v", err)
		return
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, provider, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, provider store.Provider, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, provider)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	if provider != nil {
		provider.Close()
	}
	return nil
}
