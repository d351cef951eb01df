package service

import (
	"context"
	"fmt"
	"time"

	apperrors "tiketin/internal/errors"
	"tiketin/internal/logger"
	"tiketin/internal/messaging"
	"tiketin/internal/models"
	"tiketin/internal/pricing"
	"tiketin/internal/repository"
)

type EventService struct {
	esRepo       *repository.EventElasticsearchRepository
	eventRepo    *repository.EventRepository
	scheduleRepo *repository.ScheduleRepository
	ticketRepo   *repository.TicketRepository
	natsClient   *messaging.NATSClient
}

func NewEventService(esRepo *repository.EventElasticsearchRepository, eventRepo *repository.EventRepository, scheduleRepo *repository.ScheduleRepository, ticketRepo *repository.TicketRepository, natsClient *messaging.NATSClient) *EventService {
	return &EventService{
		esRepo:       esRepo,
		eventRepo:    eventRepo,
		scheduleRepo: scheduleRepo,
		ticketRepo:   ticketRepo,
		natsClient:   natsClient,
	}
}

// Create stores the event and indexes it for search. Indexing failures are
// logged, not returned: the event exists once the database write succeeds.
func (s *EventService) Create(ctx context.Context, event *models.Event) error {
	if event.Currency == "" {
		event.Currency = "IDR"
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	if s.esRepo != nil {
		if err := s.esRepo.Index(ctx, event, nil); err != nil {
			logger.WithContext(ctx).Error("Failed to index event",
				"error", err,
				"event_id", event.ID)
		}
	}

	return nil
}

// List serves event browsing from the search index, falling back to the
// database when the index is unavailable.
func (s *EventService) List(ctx context.Context, query, date string, page, pageSize int) ([]models.ListEventsResponseItem, error) {
	if s.esRepo != nil {
		docs, err := s.esRepo.List(ctx, query, date, page, pageSize)
		if err == nil {
			result := make([]models.ListEventsResponseItem, len(docs))
			for i, doc := range docs {
				result[i] = models.ListEventsResponseItem{
					ID:       doc.ID,
					Title:    doc.Title,
					Type:     doc.Type,
					Venue:    doc.Venue,
					Currency: doc.Currency,
				}
			}
			return result, nil
		}
		logger.WithContext(ctx).Error("Search index unavailable, falling back to database", "error", err)
	}

	events, err := s.eventRepo.List(ctx, query, date, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]models.ListEventsResponseItem, len(events))
	for i, event := range events {
		result[i] = models.ListEventsResponseItem{
			ID:       event.ID,
			Title:    event.Title,
			Type:     event.Type,
			Venue:    event.Venue,
			Currency: event.Currency,
		}
	}

	return result, nil
}

// GetSchedules returns the full schedule of an event with per-schedule
// expiry computed at read time, plus whether a full-schedule purchase is
// still open. Eligibility closes for the whole set the moment the earliest
// schedule starts.
func (s *EventService) GetSchedules(ctx context.Context, eventID int64) (*models.EventSchedulesResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	schedules, err := s.scheduleRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}

	now := time.Now()
	starts := make([]time.Time, 0, len(schedules))
	views := make([]models.ScheduleView, 0, len(schedules))

	for _, schedule := range schedules {
		starts = append(starts, schedule.StartTime)

		types, err := s.ticketRepo.GetByScheduleID(ctx, schedule.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket types: %w", err)
		}

		typeViews := make([]models.TicketTypeView, len(types))
		for i, tt := range types {
			typeViews[i] = models.TicketTypeView{
				ID:            tt.ID,
				Name:          tt.Name,
				BasePrice:     tt.BasePrice,
				EarlyBirdRate: tt.EarlyBirdRate,
				ComboRate:     tt.ComboRate,
				EarlyDay:      tt.EarlyDay,
				TotalQuantity: tt.TotalQuantity,
			}
		}

		views = append(views, models.ScheduleView{
			ID:          schedule.ID,
			StartTime:   schedule.StartTime,
			EndTime:     schedule.EndTime,
			Expired:     schedule.Expired(now),
			TicketTypes: typeViews,
		})
	}

	return &models.EventSchedulesResponse{
		EventID:              eventID,
		Schedules:            views,
		FullScheduleEligible: pricing.FullScheduleEligible(starts, now),
	}, nil
}
