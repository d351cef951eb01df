package repository

import (
	"context"
	"database/sql"
	"time"

	"tiketin/internal/database"
	"tiketin/internal/models"
)

type PurchaseRepository struct {
	db *database.DB
}

func NewPurchaseRepository(db *database.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create inserts the purchase together with its ticket lines and add-on
// lines in one transaction, so a half-written purchase never becomes
// visible.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase, addOns []models.PurchaseAddOn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO purchases (user_id, event_id, kind, status, payment_status,
		                       original_total, discount_total, final_total, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		purchase.UserID,
		purchase.EventID,
		purchase.Kind,
		purchase.Status,
		purchase.PaymentStatus,
		purchase.OriginalTotal,
		purchase.DiscountTotal,
		purchase.FinalTotal,
		purchase.OrderID,
	).Scan(&purchase.ID, &purchase.CreatedAt, &purchase.UpdatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO purchase_items (purchase_id, schedule_id, ticket_type_id, quantity,
		                            original_price, early_bird_discount, combo_discount, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range purchase.Items {
		item := &purchase.Items[i]
		item.PurchaseID = purchase.ID
		err := tx.QueryRowContext(ctx, itemQuery,
			item.PurchaseID,
			item.ScheduleID,
			item.TicketTypeID,
			item.Quantity,
			item.OriginalPrice,
			item.EarlyBirdDiscount,
			item.ComboDiscount,
			item.FinalPrice,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	addOnQuery := `
		INSERT INTO purchase_add_ons (purchase_id, add_on_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	for _, a := range addOns {
		if _, err := tx.ExecContext(ctx, addOnQuery, purchase.ID, a.AddOnID, a.Quantity, a.UnitPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*models.Purchase, error) {
	purchase := &models.Purchase{}
	query := `
		SELECT id, user_id, event_id, kind, status, payment_status,
		       original_total, discount_total, final_total,
		       payment_id, order_id, created_at, updated_at
		FROM purchases
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&purchase.ID,
		&purchase.UserID,
		&purchase.EventID,
		&purchase.Kind,
		&purchase.Status,
		&purchase.PaymentStatus,
		&purchase.OriginalTotal,
		&purchase.DiscountTotal,
		&purchase.FinalTotal,
		&purchase.PaymentID,
		&purchase.OrderID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	purchase.Items, err = r.GetItems(ctx, purchase.ID)
	return purchase, err
}

func (r *PurchaseRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Purchase, error) {
	var purchases []models.Purchase
	query := `
		SELECT id, user_id, event_id, kind, status, payment_status,
		       original_total, discount_total, final_total,
		       payment_id, order_id, created_at, updated_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var purchase models.Purchase
		err := rows.Scan(
			&purchase.ID,
			&purchase.UserID,
			&purchase.EventID,
			&purchase.Kind,
			&purchase.Status,
			&purchase.PaymentStatus,
			&purchase.OriginalTotal,
			&purchase.DiscountTotal,
			&purchase.FinalTotal,
			&purchase.PaymentID,
			&purchase.OrderID,
			&purchase.CreatedAt,
			&purchase.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	return purchases, rows.Err()
}

func (r *PurchaseRepository) GetItems(ctx context.Context, purchaseID int64) ([]models.PurchaseItem, error) {
	var items []models.PurchaseItem
	query := `
		SELECT id, purchase_id, schedule_id, ticket_type_id, quantity,
		       original_price, early_bird_discount, combo_discount, final_price
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PurchaseItem
		err := rows.Scan(
			&item.ID,
			&item.PurchaseID,
			&item.ScheduleID,
			&item.TicketTypeID,
			&item.Quantity,
			&item.OriginalPrice,
			&item.EarlyBirdDiscount,
			&item.ComboDiscount,
			&item.FinalPrice,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *PurchaseRepository) GetAddOns(ctx context.Context, purchaseID int64) ([]models.PurchaseAddOn, error) {
	var addOns []models.PurchaseAddOn
	query := `
		SELECT id, purchase_id, add_on_id, quantity, unit_price
		FROM purchase_add_ons
		WHERE purchase_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.PurchaseAddOn
		if err := rows.Scan(&a.ID, &a.PurchaseID, &a.AddOnID, &a.Quantity, &a.UnitPrice); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}

	return addOns, rows.Err()
}

func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE purchases SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// SetPaymentStatus updates the payment status without touching the stored
// payment and order identifiers.
func (r *PurchaseRepository) SetPaymentStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE purchases SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// AttachPayment records the gateway identifiers handed back at initiation.
func (r *PurchaseRepository) AttachPayment(ctx context.Context, id int64, paymentID, orderID string) error {
	query := `
		UPDATE purchases
		SET payment_status = 'INITIATED', payment_id = $1, order_id = $2, updated_at = NOW()
		WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, paymentID, orderID, id)
	return err
}

func (r *PurchaseRepository) UpdatePaymentStatus(ctx context.Context, id int64, status string, paymentID string) error {
	query := `
		UPDATE purchases
		SET payment_status = $1, payment_id = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, paymentID, id)
	return err
}

// GetByPaymentID retrieves a purchase by the gateway payment ID.
func (r *PurchaseRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Purchase, error) {
	purchase := &models.Purchase{}
	query := `
		SELECT id, user_id, event_id, kind, status, payment_status,
		       original_total, discount_total, final_total,
		       payment_id, order_id, created_at, updated_at
		FROM purchases
		WHERE payment_id = $1`

	err := r.db.QueryRowContext(ctx, query, paymentID).Scan(
		&purchase.ID,
		&purchase.UserID,
		&purchase.EventID,
		&purchase.Kind,
		&purchase.Status,
		&purchase.PaymentStatus,
		&purchase.OriginalTotal,
		&purchase.DiscountTotal,
		&purchase.FinalTotal,
		&purchase.PaymentID,
		&purchase.OrderID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	purchase.Items, err = r.GetItems(ctx, purchase.ID)
	return purchase, err
}

// GetExpiredPurchases retrieves pending purchases older than the cutoff,
// whose holds should be released.
func (r *PurchaseRepository) GetExpiredPurchases(ctx context.Context, cutoff time.Time) ([]models.Purchase, error) {
	var purchases []models.Purchase
	query := `
		SELECT id, user_id, event_id, kind, status, payment_status,
		       original_total, discount_total, final_total,
		       payment_id, order_id, created_at, updated_at
		FROM purchases
		WHERE status = 'PENDING'
		  AND payment_status IN ('PENDING', 'INITIATED')
		  AND created_at < $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var purchase models.Purchase
		err := rows.Scan(
			&purchase.ID,
			&purchase.UserID,
			&purchase.EventID,
			&purchase.Kind,
			&purchase.Status,
			&purchase.PaymentStatus,
			&purchase.OriginalTotal,
			&purchase.DiscountTotal,
			&purchase.FinalTotal,
			&purchase.PaymentID,
			&purchase.OrderID,
			&purchase.CreatedAt,
			&purchase.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	return purchases, rows.Err()
}
