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
	"github.com/mcdev12/dynasty-ownership/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/postgres"
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
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	env, err := dbconfig.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment")
	}

	loc, err := leagueclock.LoadLocation(os.Getenv("LEAGUE_TIMEZONE"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid LEAGUE_TIMEZONE")
	}
	clock := leagueclock.New(clockwork.NewRealClock(), loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(ctx, postgres.ClientConfig{DSN: env.DB.DSN()})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	jsCfg := txlog.DefaultJetStreamConfig()
	jsCfg.URL = env.NATS.URL
	jsCfg.ReconnectWait = env.NATS.ReconnectWait
	publisher, err := txlog.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream publisher")
	}
	defer publisher.Close()

	relayCfg := txlog.DefaultRelayConfig()
	relayCfg.DatabaseURL = env.DB.DSN()
	relayCfg.NotifyChannel = postgres.NotifyChannel
	relay, err := txlog.NewRelay(store, publisher, clock, relayCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create transaction relay")
	}

	healthPort := os.Getenv("RELAY_HEALTH_PORT")
	if healthPort == "" {
		healthPort = "8082"
	}
	mux := http.NewServeMux()
	mux.Handle("/health", txlog.NewHealthChecker(relay, store, publisher, 5*time.Minute))
	server := &http.Server{Addr: ":" + healthPort, Handler: mux}

	log.Info().
		Str("database", env.DB.Database).
		Str("nats_url", env.NATS.URL).
		Str("stream", jsCfg.StreamName).
		Str("health_addr", server.Addr).
		Msg("starting transaction relay")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relay.Start(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("transaction relay stopped with error")
	}
	log.Info().Msg("transaction relay shutdown complete")
}
