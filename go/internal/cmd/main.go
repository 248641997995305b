package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/txlog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(parseLogLevel(cfg.Log.Level))

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("ownership server failed")
	}
	log.Info().Msg("ownership server shutdown complete")
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := leagueclock.LoadLocation(cfg.League.Timezone)
	if err != nil {
		return err
	}
	clock := leagueclock.New(clockwork.NewRealClock(), loc)

	backend, err := setupBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	services, err := setupServices(ctx, cfg, backend, clock)
	if err != nil {
		return err
	}
	defer services.Close()

	server := setupServer(cfg, services)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", server.Addr).
			Str("backend", cfg.Store.Backend).
			Str("timezone", loc.String()).
			Msg("ownership server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return services.Sweeper.Run(gctx)
	})

	if cfg.Relay.Enabled {
		relay, publisher, err := setupRelay(gctx, cfg, backend, clock)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		defer publisher.Close()
		g.Go(func() error {
			return relay.Start(gctx)
		})
	}

	return g.Wait()
}

func setupRelay(ctx context.Context, cfg *Config, backend *Backend, clock *leagueclock.Clock) (*txlog.Relay, *txlog.JetStreamPublisher, error) {
	jsCfg := txlog.DefaultJetStreamConfig()
	jsCfg.URL = cfg.Env.NATS.URL
	jsCfg.ReconnectWait = cfg.Env.NATS.ReconnectWait

	publisher, err := txlog.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return nil, nil, err
	}

	relayCfg := txlog.DefaultRelayConfig()
	relayCfg.DatabaseURL = backend.NotifyURL
	relay, err := txlog.NewRelay(backend.Store, publisher, clock, relayCfg)
	if err != nil {
		publisher.Close()
		return nil, nil, err
	}
	return relay, publisher, nil
}
