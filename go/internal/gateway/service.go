package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service bundles the connection manager, its routes and the stream
// consumer feeding it.
type Service struct {
	manager  *ConnectionManager
	handler  *WebSocketHandler
	consumer *EventConsumer
}

type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

func NewService(ctx context.Context, config Config) (*Service, error) {
	manager := NewConnectionManager(config.ConnectionConfig)

	consumer, err := NewEventConsumer(ctx, manager, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	return &Service{
		manager:  manager,
		handler:  NewWebSocketHandler(manager),
		consumer: consumer,
	}, nil
}

// Start runs the broadcaster and the consumer until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting ownership gateway")

	go s.manager.Start(ctx)
	defer s.consumer.Stop()

	return s.consumer.Start(ctx)
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}

func (s *Service) Stats() Stats {
	return s.manager.Stats()
}
