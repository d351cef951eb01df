package jobs

import (
	"context"
	"log/slog"
	"time"

	"tiketin/internal/service"
)

const checkInterval = 30 * time.Second

// PurchaseExpirationJob periodically cancels pending purchases whose
// payment window has run out, returning their stock to the pool.
type PurchaseExpirationJob struct {
	purchases *service.PurchaseService
	window    time.Duration
	ticker    *time.Ticker
	done      chan bool
}

func NewPurchaseExpirationJob(purchases *service.PurchaseService, window time.Duration) *PurchaseExpirationJob {
	return &PurchaseExpirationJob{
		purchases: purchases,
		window:    window,
		done:      make(chan bool),
	}
}

// Start begins the background sweep. The first check runs immediately.
func (j *PurchaseExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting purchase expiration job",
		"check_interval", checkInterval.String(),
		"payment_window", j.window.String())

	j.ticker = time.NewTicker(checkInterval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Purchase expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *PurchaseExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *PurchaseExpirationJob) sweep(ctx context.Context) {
	expired, err := j.purchases.ExpirePending(ctx, j.window)
	if err != nil {
		slog.Error("Failed to expire pending purchases", "error", err)
		return
	}

	if expired > 0 {
		slog.Info("Expired pending purchases", "count", expired)
	}
}
