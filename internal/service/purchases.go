package service

import (
	"context"
	"fmt"
	"time"

	apperrors "tiketin/internal/errors"
	"tiketin/internal/external"
	"tiketin/internal/logger"
	"tiketin/internal/messaging"
	"tiketin/internal/models"
	"tiketin/internal/pricing"
	"tiketin/internal/repository"

	"github.com/google/uuid"
)

type PurchaseService struct {
	purchaseRepo  *repository.PurchaseRepository
	ticketRepo    *repository.TicketRepository
	scheduleRepo  *repository.ScheduleRepository
	eventRepo     *repository.EventRepository
	addOnRepo     *repository.AddOnRepository
	tickets       *TicketService
	paymentClient *external.PaymentClient
	natsClient    *messaging.NATSClient
	currency      string
}

func NewPurchaseService(repos *repository.Repositories, tickets *TicketService, paymentClient *external.PaymentClient, natsClient *messaging.NATSClient, currency string) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:  repos.Purchases,
		ticketRepo:    repos.Tickets,
		scheduleRepo:  repos.Schedules,
		eventRepo:     repos.EventsDB,
		addOnRepo:     repos.AddOns,
		tickets:       tickets,
		paymentClient: paymentClient,
		natsClient:    natsClient,
		currency:      currency,
	}
}

// CreateSingle books tickets for one schedule. Only the early-bird discount
// participates; add-ons are charged at face value. A requested quantity
// above the availability or quota cap is clamped with a warning, never
// rejected.
func (s *PurchaseService) CreateSingle(ctx context.Context, userID int64, req *models.CreateSinglePurchaseRequest) (*models.PurchaseResponse, error) {
	now := time.Now()

	schedule, err := s.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if schedule == nil {
		return nil, apperrors.ErrNotFound
	}
	if schedule.Expired(now) {
		return nil, apperrors.ErrScheduleExpired
	}

	tt, err := s.ticketRepo.GetByID(ctx, req.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	if tt == nil || tt.ScheduleID != schedule.ID {
		return nil, apperrors.ErrNotFound
	}

	quota, err := s.tickets.ResolveQuota(ctx, tt, userID)
	if err != nil {
		return nil, err
	}

	avail, err := s.tickets.ResolveAvailability(ctx, tt.ID)
	if err != nil {
		return nil, err
	}

	state := pricing.GateState(avail, quota)
	if !state.Selectable() {
		return nil, apperrors.ErrNotSelectable
	}

	quantity, clamped := pricing.ClampQuantity(req.Quantity, avail, quota)
	if quantity <= 0 {
		return nil, apperrors.ErrNotSelectable
	}

	addOnLines, purchaseAddOns, err := s.resolveAddOns(ctx, schedule.EventID, req.AddOns)
	if err != nil {
		return nil, err
	}

	rates := pricing.TicketRates{EarlyBird: tt.EarlyBirdRate, Combo: tt.ComboRate}
	quote := pricing.QuoteSingle(tt.BasePrice, quantity, rates, quota, now, addOnLines)

	if err := s.ticketRepo.Reserve(ctx, tt.ID, userID, quantity); err != nil {
		return nil, fmt.Errorf("failed to reserve tickets: %w", err)
	}

	unitDiscount := tt.BasePrice - quote.UnitPrice
	purchase := &models.Purchase{
		UserID:        userID,
		EventID:       schedule.EventID,
		Kind:          models.PurchaseKindSingle,
		Status:        models.PurchaseStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		OriginalTotal: tt.BasePrice*int64(quantity) + quote.AddOnsTotal,
		DiscountTotal: unitDiscount * int64(quantity),
		FinalTotal:    quote.GrandTotal,
		Items: []models.PurchaseItem{{
			ScheduleID:        schedule.ID,
			TicketTypeID:      tt.ID,
			Quantity:          quantity,
			OriginalPrice:     tt.BasePrice * int64(quantity),
			EarlyBirdDiscount: unitDiscount * int64(quantity),
			ComboDiscount:     0,
			FinalPrice:        quote.TicketTotal,
		}},
	}

	if err := s.purchaseRepo.Create(ctx, purchase, purchaseAddOns); err != nil {
		if releaseErr := s.ticketRepo.Release(ctx, tt.ID, userID, quantity); releaseErr != nil {
			logger.WithContext(ctx).Error("Failed to release reservation after create failure",
				"error", releaseErr,
				"ticket_type_id", tt.ID)
		}
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.tickets.InvalidateAvailability(ctx, tt.ID)
	s.publishCreated(ctx, purchase)

	resp := &models.PurchaseResponse{
		Success: true,
		Data:    models.PurchaseData{ID: purchase.ID},
	}
	if clamped {
		resp.Warning = fmt.Sprintf("requested quantity reduced to %d", quantity)
	}
	return resp, nil
}

// CreateRecurring books one ticket per schedule across the full schedule of
// an event. Early-bird and combo discounts stack additively per line. The
// purchase window closes for the whole set once the earliest schedule has
// started.
func (s *PurchaseService) CreateRecurring(ctx context.Context, userID int64, req *models.CreateRecurringPurchaseRequest) (*models.PurchaseResponse, error) {
	now := time.Now()

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	schedules, err := s.scheduleRepo.GetByEventID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}

	starts := make([]time.Time, len(schedules))
	byID := make(map[int64]models.Schedule, len(schedules))
	for i, schedule := range schedules {
		starts[i] = schedule.StartTime
		byID[schedule.ID] = schedule
	}

	if !pricing.FullScheduleEligible(starts, now) {
		return nil, apperrors.ErrFullScheduleClosed
	}

	scheduleIDs := make([]int64, len(req.Selections))
	for i, sel := range req.Selections {
		scheduleIDs[i] = sel.ScheduleID
	}
	if !pricing.DistinctSchedules(scheduleIDs) {
		return nil, apperrors.ErrDuplicateSelection
	}

	selections := make([]pricing.RecurringSelection, 0, len(req.Selections))
	types := make(map[int64]*models.TicketType, len(req.Selections))

	for _, sel := range req.Selections {
		if _, ok := byID[sel.ScheduleID]; !ok {
			return nil, apperrors.ErrNotFound
		}

		tt, err := s.ticketRepo.GetByID(ctx, sel.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket type: %w", err)
		}
		if tt == nil || tt.ScheduleID != sel.ScheduleID {
			return nil, apperrors.ErrNotFound
		}

		quota, err := s.tickets.ResolveQuota(ctx, tt, userID)
		if err != nil {
			return nil, err
		}

		avail, err := s.tickets.ResolveAvailability(ctx, tt.ID)
		if err != nil {
			return nil, err
		}

		state := pricing.GateState(avail, quota)
		if !state.Selectable() {
			return nil, apperrors.ErrNotSelectable
		}
		if pricing.MaxQuantity(avail, quota) < 1 {
			return nil, apperrors.ErrNotSelectable
		}

		types[tt.ID] = tt
		selections = append(selections, pricing.RecurringSelection{
			ScheduleID:   sel.ScheduleID,
			TicketTypeID: tt.ID,
			Price:        tt.BasePrice,
			Rates:        pricing.TicketRates{EarlyBird: tt.EarlyBirdRate, Combo: tt.ComboRate},
			Quota:        quota,
		})
	}

	addOnLines, purchaseAddOns, err := s.resolveAddOns(ctx, req.EventID, req.AddOns)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteRecurring(selections, now, addOnLines)

	reserved := make([]int64, 0, len(selections))
	release := func() {
		for _, ticketTypeID := range reserved {
			if err := s.ticketRepo.Release(ctx, ticketTypeID, userID, 1); err != nil {
				logger.WithContext(ctx).Error("Failed to release reservation during rollback",
					"error", err,
					"ticket_type_id", ticketTypeID)
			}
		}
	}

	for _, sel := range selections {
		if err := s.ticketRepo.Reserve(ctx, sel.TicketTypeID, userID, 1); err != nil {
			release()
			return nil, fmt.Errorf("failed to reserve tickets: %w", err)
		}
		reserved = append(reserved, sel.TicketTypeID)
	}

	items := make([]models.PurchaseItem, len(quote.Lines))
	for i, line := range quote.Lines {
		items[i] = models.PurchaseItem{
			ScheduleID:        line.ScheduleID,
			TicketTypeID:      line.TicketTypeID,
			Quantity:          1,
			OriginalPrice:     line.OriginalPrice,
			EarlyBirdDiscount: line.EarlyBirdDiscount,
			ComboDiscount:     line.ComboDiscount,
			FinalPrice:        line.FinalPrice,
		}
	}

	purchase := &models.Purchase{
		UserID:        userID,
		EventID:       req.EventID,
		Kind:          models.PurchaseKindRecurring,
		Status:        models.PurchaseStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		OriginalTotal: quote.OriginalTotal,
		DiscountTotal: quote.DiscountTotal,
		FinalTotal:    quote.FinalTotal,
		Items:         items,
	}

	if err := s.purchaseRepo.Create(ctx, purchase, purchaseAddOns); err != nil {
		release()
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	for _, sel := range selections {
		s.tickets.InvalidateAvailability(ctx, sel.TicketTypeID)
	}
	s.publishCreated(ctx, purchase)

	return &models.PurchaseResponse{
		Success: true,
		Data:    models.PurchaseData{ID: purchase.ID},
	}, nil
}

// Cancel releases the purchase's holds and returns its stock. Pending and
// confirmed purchases can be cancelled; anything already cancelled or
// expired cannot.
func (s *PurchaseService) Cancel(ctx context.Context, userID, purchaseID int64) error {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return apperrors.ErrNotFound
	}
	if purchase.UserID != userID {
		return apperrors.ErrForbidden
	}

	switch purchase.Status {
	case models.PurchaseStatusPending:
		for _, item := range purchase.Items {
			if err := s.ticketRepo.Release(ctx, item.TicketTypeID, userID, item.Quantity); err != nil {
				logger.WithContext(ctx).Error("Failed to release tickets during cancellation",
					"error", err,
					"ticket_type_id", item.TicketTypeID)
			}
		}
	case models.PurchaseStatusConfirmed:
		for _, item := range purchase.Items {
			if err := s.ticketRepo.ReleaseConfirmed(ctx, item.TicketTypeID, userID, item.Quantity); err != nil {
				logger.WithContext(ctx).Error("Failed to release tickets during cancellation",
					"error", err,
					"ticket_type_id", item.TicketTypeID)
			}
		}
	default:
		return apperrors.ErrNotPending
	}

	if purchase.PaymentID != nil && purchase.PaymentStatus == models.PaymentStatusInitiated {
		if err := s.paymentClient.CancelPayment(*purchase.PaymentID, "Purchase cancelled by user"); err != nil {
			logger.WithContext(ctx).Error("Failed to cancel payment during cancellation",
				"error", err,
				"payment_id", *purchase.PaymentID)
		}
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, models.PurchaseStatusCancelled); err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if err := s.purchaseRepo.SetPaymentStatus(ctx, purchase.ID, models.PaymentStatusCancelled); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	for _, item := range purchase.Items {
		s.tickets.InvalidateAvailability(ctx, item.TicketTypeID)
	}

	event := models.PurchaseCancelledEvent{
		PurchaseID: purchase.ID,
		EventID:    purchase.EventID,
		Reason:     "User cancellation",
		Timestamp:  time.Now(),
	}
	if err := s.natsClient.Publish(models.EventPurchaseCancelled, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish purchase cancelled event",
			"error", err,
			"purchase_id", purchase.ID)
	}

	return nil
}

func (s *PurchaseService) List(ctx context.Context, userID int64) ([]models.ListPurchasesResponseItem, error) {
	purchases, err := s.purchaseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases: %w", err)
	}

	result := make([]models.ListPurchasesResponseItem, len(purchases))
	for i, purchase := range purchases {
		items, err := s.purchaseRepo.GetItems(ctx, purchase.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get purchase items: %w", err)
		}
		result[i] = models.ListPurchasesResponseItem{
			ID:            purchase.ID,
			EventID:       purchase.EventID,
			Kind:          purchase.Kind,
			Status:        purchase.Status,
			PaymentStatus: purchase.PaymentStatus,
			OriginalTotal: purchase.OriginalTotal,
			DiscountTotal: purchase.DiscountTotal,
			FinalTotal:    purchase.FinalTotal,
			CreatedAt:     purchase.CreatedAt,
			Items:         items,
		}
	}

	return result, nil
}

// CreatePayment initiates a gateway payment for a pending purchase and
// returns the redirect URL the buyer should be sent to.
func (s *PurchaseService) CreatePayment(ctx context.Context, userID, purchaseID int64) (string, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return "", fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return "", apperrors.ErrNotFound
	}
	if purchase.UserID != userID {
		return "", apperrors.ErrForbidden
	}
	if purchase.Status != models.PurchaseStatusPending || purchase.PaymentStatus != models.PaymentStatusPending {
		return "", apperrors.ErrNotPending
	}

	description := "Ticket purchase"
	if event, err := s.eventRepo.GetByID(ctx, purchase.EventID); err == nil && event != nil {
		description = fmt.Sprintf("Tickets for %s", event.Title)
	}

	orderID := uuid.New().String()
	paymentResp, err := s.paymentClient.InitPayment(purchase.FinalTotal, orderID, s.currency, description)
	if err != nil {
		return "", fmt.Errorf("failed to initialize payment: %w", err)
	}

	if err := s.purchaseRepo.AttachPayment(ctx, purchase.ID, paymentResp.PaymentID, orderID); err != nil {
		return "", fmt.Errorf("failed to attach payment: %w", err)
	}

	event := models.PaymentInitiatedEvent{
		PurchaseID: purchase.ID,
		EventID:    purchase.EventID,
		Amount:     purchase.FinalTotal,
		PaymentID:  paymentResp.PaymentID,
		Timestamp:  time.Now(),
	}
	if err := s.natsClient.Publish(models.EventPaymentInitiated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment initiated event",
			"error", err,
			"purchase_id", purchase.ID)
	}

	return paymentResp.PaymentURL, nil
}

// ConfirmPayment settles a purchase after the gateway reports success:
// pending holds become confirmed usage. Repeated notifications for an
// already settled purchase are ignored.
func (s *PurchaseService) ConfirmPayment(ctx context.Context, paymentID string) error {
	purchase, err := s.purchaseRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return apperrors.ErrNotFound
	}
	if purchase.Status != models.PurchaseStatusPending {
		return nil
	}

	for _, item := range purchase.Items {
		if err := s.ticketRepo.ConfirmReservation(ctx, item.TicketTypeID, purchase.UserID, item.Quantity); err != nil {
			return fmt.Errorf("failed to confirm reservation: %w", err)
		}
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, models.PurchaseStatusConfirmed); err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if err := s.purchaseRepo.SetPaymentStatus(ctx, purchase.ID, models.PaymentStatusCompleted); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	event := models.PaymentCompletedEvent{
		PurchaseID: purchase.ID,
		PaymentID:  paymentID,
		Timestamp:  time.Now(),
	}
	if purchase.OrderID != nil {
		event.OrderID = *purchase.OrderID
	}
	if err := s.natsClient.Publish(models.EventPaymentCompleted, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment completed event",
			"error", err,
			"purchase_id", purchase.ID)
	}

	return nil
}

// FailPayment releases a purchase's holds after the gateway reports a
// failed or rejected payment.
func (s *PurchaseService) FailPayment(ctx context.Context, paymentID, reason string) error {
	purchase, err := s.purchaseRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return apperrors.ErrNotFound
	}
	if purchase.Status != models.PurchaseStatusPending {
		return nil
	}

	for _, item := range purchase.Items {
		if err := s.ticketRepo.Release(ctx, item.TicketTypeID, purchase.UserID, item.Quantity); err != nil {
			logger.WithContext(ctx).Error("Failed to release tickets after payment failure",
				"error", err,
				"ticket_type_id", item.TicketTypeID)
		}
		s.tickets.InvalidateAvailability(ctx, item.TicketTypeID)
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, models.PurchaseStatusCancelled); err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if err := s.purchaseRepo.SetPaymentStatus(ctx, purchase.ID, models.PaymentStatusFailed); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	event := models.PaymentFailedEvent{
		PurchaseID: purchase.ID,
		PaymentID:  paymentID,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
	if purchase.OrderID != nil {
		event.OrderID = *purchase.OrderID
	}
	if err := s.natsClient.Publish(models.EventPaymentFailed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment failed event",
			"error", err,
			"purchase_id", purchase.ID)
	}

	return nil
}

// HandlePaymentNotification routes a gateway webhook to the matching
// settlement path.
func (s *PurchaseService) HandlePaymentNotification(ctx context.Context, notification *models.PaymentNotificationPayload) error {
	logger.WithContext(ctx).Info("Received payment notification",
		"payment_id", notification.PaymentID,
		"status", notification.Status)

	switch notification.Status {
	case "completed", "CONFIRMED", "COMPLETED":
		return s.ConfirmPayment(ctx, notification.PaymentID)
	case "failed", "REJECTED", "CANCELLED", "FAILED":
		return s.FailPayment(ctx, notification.PaymentID, notification.Status)
	}

	return nil
}

// ExpirePending cancels pending purchases older than the payment window
// and returns their stock. Returns how many purchases were expired.
func (s *PurchaseService) ExpirePending(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	purchases, err := s.purchaseRepo.GetExpiredPurchases(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to get expired purchases: %w", err)
	}

	expired := 0
	for _, purchase := range purchases {
		items, err := s.purchaseRepo.GetItems(ctx, purchase.ID)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to get items of expired purchase",
				"error", err,
				"purchase_id", purchase.ID)
			continue
		}

		for _, item := range items {
			if err := s.ticketRepo.Release(ctx, item.TicketTypeID, purchase.UserID, item.Quantity); err != nil {
				logger.WithContext(ctx).Error("Failed to release tickets of expired purchase",
					"error", err,
					"ticket_type_id", item.TicketTypeID)
			}
			s.tickets.InvalidateAvailability(ctx, item.TicketTypeID)
		}

		if purchase.PaymentID != nil && purchase.PaymentStatus == models.PaymentStatusInitiated {
			if err := s.paymentClient.CancelPayment(*purchase.PaymentID, "Payment window expired"); err != nil {
				logger.WithContext(ctx).Error("Failed to cancel payment of expired purchase",
					"error", err,
					"payment_id", *purchase.PaymentID)
			}
		}

		if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, models.PurchaseStatusExpired); err != nil {
			logger.WithContext(ctx).Error("Failed to mark purchase expired",
				"error", err,
				"purchase_id", purchase.ID)
			continue
		}
		if err := s.purchaseRepo.SetPaymentStatus(ctx, purchase.ID, models.PaymentStatusCancelled); err != nil {
			logger.WithContext(ctx).Error("Failed to update payment status of expired purchase",
				"error", err,
				"purchase_id", purchase.ID)
		}

		event := models.PurchaseExpiredEvent{
			PurchaseID: purchase.ID,
			EventID:    purchase.EventID,
			UserID:     purchase.UserID,
			Reason:     "Payment window expired",
			Timestamp:  time.Now(),
		}
		if err := s.natsClient.Publish(models.EventPurchaseExpired, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish purchase expired event",
				"error", err,
				"purchase_id", purchase.ID)
		}

		expired++
	}

	return expired, nil
}

// resolveAddOns validates the requested add-ons against the event and
// freezes their unit prices.
func (s *PurchaseService) resolveAddOns(ctx context.Context, eventID int64, requested []models.AddOnSelection) ([]pricing.AddOnLine, []models.PurchaseAddOn, error) {
	if len(requested) == 0 {
		return nil, nil, nil
	}

	lines := make([]pricing.AddOnLine, 0, len(requested))
	purchaseAddOns := make([]models.PurchaseAddOn, 0, len(requested))

	for _, sel := range requested {
		addOn, err := s.addOnRepo.GetByID(ctx, sel.AddOnID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get add-on: %w", err)
		}
		if addOn == nil || addOn.EventID != eventID {
			return nil, nil, apperrors.ErrNotFound
		}

		lines = append(lines, pricing.AddOnLine{
			UnitPrice: addOn.UnitPrice,
			Quantity:  sel.Quantity,
		})
		purchaseAddOns = append(purchaseAddOns, models.PurchaseAddOn{
			AddOnID:   addOn.ID,
			Quantity:  sel.Quantity,
			UnitPrice: addOn.UnitPrice,
		})
	}

	return lines, purchaseAddOns, nil
}

func (s *PurchaseService) publishCreated(ctx context.Context, purchase *models.Purchase) {
	event := models.PurchaseCreatedEvent{
		PurchaseID: purchase.ID,
		EventID:    purchase.EventID,
		UserID:     purchase.UserID,
		Kind:       purchase.Kind,
		FinalTotal: purchase.FinalTotal,
		Timestamp:  time.Now(),
	}
	if err := s.natsClient.Publish(models.EventPurchaseCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish purchase created event",
			"error", err,
			"purchase_id", purchase.ID)
	}
}
