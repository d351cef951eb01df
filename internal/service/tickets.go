package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tiketin/internal/cache"
	apperrors "tiketin/internal/errors"
	"tiketin/internal/logger"
	"tiketin/internal/models"
	"tiketin/internal/pricing"
	"tiketin/internal/repository"
)

type TicketService struct {
	ticketRepo *repository.TicketRepository
	valkey     *cache.ValkeyClient
}

func NewTicketService(ticketRepo *repository.TicketRepository, valkey *cache.ValkeyClient) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		valkey:     valkey,
	}
}

// GetAvailability resolves remaining stock for a ticket type. Reads go
// cache first, then the database; when the database is unreachable the
// last known static total is served as an assumed-available fallback with
// Known set to false, so buyers are not locked out by an outage.
func (s *TicketService) GetAvailability(ctx context.Context, ticketTypeID int64) (*models.AvailabilityResponse, error) {
	if s.valkey != nil {
		if cached, err := s.valkey.GetAvailability(ctx, ticketTypeID); err == nil {
			return cached, nil
		}
	}

	total, sold, err := s.ticketRepo.GetAvailability(ctx, ticketTypeID)
	if err == nil {
		avail := pricing.KnownAvailability(total, sold)
		resp := &models.AvailabilityResponse{
			TicketTypeID:  ticketTypeID,
			Remaining:     avail.Remaining(),
			Sold:          sold,
			TotalQuantity: total,
			Known:         true,
		}
		if s.valkey != nil {
			if err := s.valkey.SetAvailability(ctx, resp); err != nil {
				logger.WithContext(ctx).Warn("Failed to cache availability",
					"error", err,
					"ticket_type_id", ticketTypeID)
			}
		}
		return resp, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}

	// Database is unreachable. Serve the pinned static total as an
	// assumed-available figure rather than failing the read.
	if s.valkey != nil {
		if staticTotal, cacheErr := s.valkey.GetStaticTotal(ctx, ticketTypeID); cacheErr == nil {
			logger.WithContext(ctx).Warn("Serving assumed availability from static total",
				"error", err,
				"ticket_type_id", ticketTypeID)
			avail := pricing.AssumedAvailability(staticTotal)
			return &models.AvailabilityResponse{
				TicketTypeID:  ticketTypeID,
				Remaining:     avail.Remaining(),
				Sold:          0,
				TotalQuantity: staticTotal,
				Known:         false,
			}, nil
		}
	}

	return nil, fmt.Errorf("failed to get availability: %w", err)
}

// GetQuota returns the caller's quota record for a ticket type together
// with the selection state of the availability gate.
func (s *TicketService) GetQuota(ctx context.Context, ticketTypeID, userID int64) (*models.QuotaResponse, error) {
	tt, err := s.ticketRepo.GetByID(ctx, ticketTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	if tt == nil {
		return nil, apperrors.ErrNotFound
	}

	quota, err := s.ResolveQuota(ctx, tt, userID)
	if err != nil {
		return nil, err
	}

	avail, err := s.ResolveAvailability(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}

	state := pricing.GateState(avail, quota)

	return &models.QuotaResponse{
		TicketTypeID:     ticketTypeID,
		MaxPerUser:       quota.MaxPerUser,
		ConfirmedByUser:  quota.Confirmed,
		PendingByUser:    quota.Pending,
		RemainingForUser: quota.RemainingForUser(),
		EarlyDay:         quota.EarlyDay,
		State:            string(state),
	}, nil
}

// ResolveQuota builds the pricing quota for a user from the ticket type
// configuration and the user's usage row. A missing usage row means zero
// usage, not a missing quota.
func (s *TicketService) ResolveQuota(ctx context.Context, tt *models.TicketType, userID int64) (pricing.Quota, error) {
	quota := pricing.Quota{
		Exists:     true,
		MaxPerUser: tt.MaxPerUser,
		EarlyDay:   tt.EarlyDay,
	}

	usage, found, err := s.ticketRepo.GetQuotaUsage(ctx, tt.ID, userID)
	if err != nil {
		return pricing.Quota{}, fmt.Errorf("failed to get quota usage: %w", err)
	}
	if found {
		quota.Confirmed = usage.Confirmed
		quota.Pending = usage.Pending
	}

	return quota, nil
}

// ResolveAvailability returns the pricing-level availability, preserving
// the known/assumed distinction of the fallback path.
func (s *TicketService) ResolveAvailability(ctx context.Context, ticketTypeID int64) (pricing.Availability, error) {
	resp, err := s.GetAvailability(ctx, ticketTypeID)
	if err != nil {
		return pricing.Availability{}, err
	}
	if !resp.Known {
		return pricing.AssumedAvailability(resp.TotalQuantity), nil
	}
	return pricing.KnownAvailability(resp.TotalQuantity, resp.Sold), nil
}

// InvalidateAvailability drops the cached snapshot after stock changed.
func (s *TicketService) InvalidateAvailability(ctx context.Context, ticketTypeID int64) {
	if s.valkey == nil {
		return
	}
	if err := s.valkey.InvalidateAvailability(ctx, ticketTypeID); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate availability cache",
			"error", err,
			"ticket_type_id", ticketTypeID)
	}
}
