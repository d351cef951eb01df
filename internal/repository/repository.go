package repository

import (
	"tiketin/internal/database"
	"tiketin/internal/search"
)

type Repositories struct {
	Events    *EventElasticsearchRepository
	EventsDB  *EventRepository
	Schedules *ScheduleRepository
	Tickets   *TicketRepository
	Purchases *PurchaseRepository
	AddOns    *AddOnRepository
	Users     *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:    nil, // Will be set when Elasticsearch client is available
		EventsDB:  NewEventRepository(db),
		Schedules: NewScheduleRepository(db),
		Tickets:   NewTicketRepository(db),
		Purchases: NewPurchaseRepository(db),
		AddOns:    NewAddOnRepository(db),
		Users:     NewUserRepository(db),
	}
}

func NewRepositoriesWithElasticsearch(db *database.DB, es *search.ElasticsearchClient) *Repositories {
	r := NewRepositories(db)
	r.Events = NewEventElasticsearchRepository(es)
	return r
}
