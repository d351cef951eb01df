package repository

import (
	"context"
	"database/sql"

	"tiketin/internal/database"
	"tiketin/internal/models"
)

type AddOnRepository struct {
	db *database.DB
}

func NewAddOnRepository(db *database.DB) *AddOnRepository {
	return &AddOnRepository{db: db}
}

func (r *AddOnRepository) Create(ctx context.Context, addOn *models.AddOn) error {
	query := `
		INSERT INTO add_ons (event_id, name, unit_price)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		addOn.EventID,
		addOn.Name,
		addOn.UnitPrice,
	).Scan(&addOn.ID)
}

func (r *AddOnRepository) GetByID(ctx context.Context, id int64) (*models.AddOn, error) {
	addOn := &models.AddOn{}
	query := `
		SELECT id, event_id, name, unit_price
		FROM add_ons
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&addOn.ID,
		&addOn.EventID,
		&addOn.Name,
		&addOn.UnitPrice,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return addOn, err
}

func (r *AddOnRepository) GetByEventID(ctx context.Context, eventID int64) ([]models.AddOn, error) {
	var addOns []models.AddOn
	query := `
		SELECT id, event_id, name, unit_price
		FROM add_ons
		WHERE event_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var addOn models.AddOn
		if err := rows.Scan(&addOn.ID, &addOn.EventID, &addOn.Name, &addOn.UnitPrice); err != nil {
			return nil, err
		}
		addOns = append(addOns, addOn)
	}

	return addOns, rows.Err()
}
