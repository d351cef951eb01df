package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tiketin/internal/database"
	"tiketin/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, tt *models.TicketType) error {
	query := `
		INSERT INTO ticket_types (schedule_id, name, base_price, early_bird_rate, combo_rate,
		                          total_quantity, sold, max_per_user, early_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		tt.ScheduleID,
		tt.Name,
		tt.BasePrice,
		tt.EarlyBirdRate,
		tt.ComboRate,
		tt.TotalQuantity,
		tt.Sold,
		tt.MaxPerUser,
		tt.EarlyDay,
	).Scan(&tt.ID)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.TicketType, error) {
	tt := &models.TicketType{}
	query := `
		SELECT id, schedule_id, name, base_price, early_bird_rate, combo_rate,
		       total_quantity, sold, max_per_user, early_day
		FROM ticket_types
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tt.ID,
		&tt.ScheduleID,
		&tt.Name,
		&tt.BasePrice,
		&tt.EarlyBirdRate,
		&tt.ComboRate,
		&tt.TotalQuantity,
		&tt.Sold,
		&tt.MaxPerUser,
		&tt.EarlyDay,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tt, err
}

func (r *TicketRepository) GetByScheduleID(ctx context.Context, scheduleID int64) ([]models.TicketType, error) {
	var types []models.TicketType
	query := `
		SELECT id, schedule_id, name, base_price, early_bird_rate, combo_rate,
		       total_quantity, sold, max_per_user, early_day
		FROM ticket_types
		WHERE schedule_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tt models.TicketType
		err := rows.Scan(
			&tt.ID,
			&tt.ScheduleID,
			&tt.Name,
			&tt.BasePrice,
			&tt.EarlyBirdRate,
			&tt.ComboRate,
			&tt.TotalQuantity,
			&tt.Sold,
			&tt.MaxPerUser,
			&tt.EarlyDay,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}

	return types, rows.Err()
}

// GetAvailability reads the stock counters with retry so a transient
// database hiccup doesn't immediately push reads onto the fallback path.
func (r *TicketRepository) GetAvailability(ctx context.Context, ticketTypeID int64) (total, sold int, err error) {
	query := `SELECT total_quantity, sold FROM ticket_types WHERE id = $1`

	rows, err := r.db.ExecuteWithRetry(ctx, query, ticketTypeID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, 0, err
		}
		return 0, 0, sql.ErrNoRows
	}

	if err := rows.Scan(&total, &sold); err != nil {
		return 0, 0, err
	}

	return total, sold, rows.Err()
}

// GetQuotaUsage returns the user's usage row for a ticket type. A missing
// row is reported as found=false, which callers treat as zero usage.
func (r *TicketRepository) GetQuotaUsage(ctx context.Context, ticketTypeID, userID int64) (*models.TicketQuotaUsage, bool, error) {
	usage := &models.TicketQuotaUsage{}
	query := `
		SELECT ticket_type_id, user_id, confirmed, pending, updated_at
		FROM ticket_quotas
		WHERE ticket_type_id = $1 AND user_id = $2`

	err := r.db.QueryRowContext(ctx, query, ticketTypeID, userID).Scan(
		&usage.TicketTypeID,
		&usage.UserID,
		&usage.Confirmed,
		&usage.Pending,
		&usage.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return usage, true, nil
}

// Reserve holds quantity units of a ticket type for a user: stock is taken
// from the pool and the user's pending usage grows by the same amount. The
// ticket type row is locked so concurrent reservations cannot oversell, and
// the per-user cap is re-checked under the same lock so concurrent or
// repeated requests cannot stack holds past it.
func (r *TicketRepository) Reserve(ctx context.Context, ticketTypeID, userID int64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total, sold, maxPerUser int
	lockQuery := `SELECT total_quantity, sold, max_per_user FROM ticket_types WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, ticketTypeID).Scan(&total, &sold, &maxPerUser); err != nil {
		return err
	}

	if total-sold < quantity {
		return fmt.Errorf("insufficient stock: %d remaining, %d requested", total-sold, quantity)
	}

	var held int
	heldQuery := `SELECT confirmed + pending FROM ticket_quotas WHERE ticket_type_id = $1 AND user_id = $2 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, heldQuery, ticketTypeID, userID).Scan(&held); err != nil && err != sql.ErrNoRows {
		return err
	}
	if maxPerUser > 0 && held+quantity > maxPerUser {
		return fmt.Errorf("user quota exceeded: %d held, %d requested, %d allowed", held, quantity, maxPerUser)
	}

	updateQuery := `UPDATE ticket_types SET sold = sold + $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, quantity, ticketTypeID); err != nil {
		return err
	}

	upsertQuery := `
		INSERT INTO ticket_quotas (ticket_type_id, user_id, confirmed, pending)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (ticket_type_id, user_id)
		DO UPDATE SET pending = ticket_quotas.pending + $3, updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, upsertQuery, ticketTypeID, userID, quantity); err != nil {
		return err
	}

	return tx.Commit()
}

// ConfirmReservation moves quantity units of a user's hold from pending to
// confirmed. Stock was already taken at reservation time.
func (r *TicketRepository) ConfirmReservation(ctx context.Context, ticketTypeID, userID int64, quantity int) error {
	query := `
		UPDATE ticket_quotas
		SET pending = pending - $1, confirmed = confirmed + $1, updated_at = NOW()
		WHERE ticket_type_id = $2 AND user_id = $3`

	_, err := r.db.ExecContext(ctx, query, quantity, ticketTypeID, userID)
	return err
}

// Release returns quantity units to the pool and drops the user's pending
// hold, used when a purchase is cancelled, expired or its payment failed.
func (r *TicketRepository) Release(ctx context.Context, ticketTypeID, userID int64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `UPDATE ticket_types SET sold = GREATEST(sold - $1, 0) WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, quantity, ticketTypeID); err != nil {
		return err
	}

	quotaQuery := `
		UPDATE ticket_quotas
		SET pending = GREATEST(pending - $1, 0), updated_at = NOW()
		WHERE ticket_type_id = $2 AND user_id = $3`
	if _, err := tx.ExecContext(ctx, quotaQuery, quantity, ticketTypeID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// ReleaseConfirmed returns confirmed units to the pool, used when a
// confirmed purchase is cancelled.
func (r *TicketRepository) ReleaseConfirmed(ctx context.Context, ticketTypeID, userID int64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `UPDATE ticket_types SET sold = GREATEST(sold - $1, 0) WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, quantity, ticketTypeID); err != nil {
		return err
	}

	quotaQuery := `
		UPDATE ticket_quotas
		SET confirmed = GREATEST(confirmed - $1, 0), updated_at = NOW()
		WHERE ticket_type_id = $2 AND user_id = $3`
	if _, err := tx.ExecContext(ctx, quotaQuery, quantity, ticketTypeID, userID); err != nil {
		return err
	}

	return tx.Commit()
}
