package consumers

import (
	"context"
	"log/slog"

	"tiketin/internal/cache"
	"tiketin/internal/config"
	"tiketin/internal/database"
	"tiketin/internal/external"
	"tiketin/internal/messaging"
	"tiketin/internal/models"
	"tiketin/internal/repository"
	"tiketin/internal/service"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	repos    *repository.Repositories
	services *service.Services
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, consumers running without cache", "error", err)
		valkeyClient = nil
	}

	repos := repository.NewRepositories(db)
	paymentClient := external.NewPaymentClient(cfg.Payment)
	services := service.NewServices(repos, natsClient, valkeyClient, paymentClient, cfg.Currency)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		repos:    repos,
		services: services,
		handlers: NewHandlers(services),
	}, nil
}

// Services exposes the service layer to background jobs running alongside
// the consumers.
func (cs *ConsumerService) Services() *service.Services {
	return cs.services
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue(models.EventPurchaseCreated, "consumers", cs.handlers.HandlePurchaseCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPurchaseCancelled, "consumers", cs.handlers.HandlePurchaseCancelled); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPurchaseExpired, "consumers", cs.handlers.HandlePurchaseExpired); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentInitiated, "consumers", cs.handlers.HandlePaymentInitiated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentCompleted, "consumers", cs.handlers.HandlePaymentCompleted); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentFailed, "consumers", cs.handlers.HandlePaymentFailed); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
