package service

import (
	"tiketin/internal/cache"
	"tiketin/internal/external"
	"tiketin/internal/messaging"
	"tiketin/internal/repository"
)

type Services struct {
	Events    *EventService
	Tickets   *TicketService
	Purchases *PurchaseService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, valkey *cache.ValkeyClient, paymentClient *external.PaymentClient, currency string) *Services {
	eventService := NewEventService(repos.Events, repos.EventsDB, repos.Schedules, repos.Tickets, natsClient)
	ticketService := NewTicketService(repos.Tickets, valkey)
	purchaseService := NewPurchaseService(repos, ticketService, paymentClient, natsClient, currency)

	return &Services{
		Events:    eventService,
		Tickets:   ticketService,
		Purchases: purchaseService,
	}
}
