package repository

import (
	"context"
	"database/sql"

	"tiketin/internal/database"
	"tiketin/internal/models"
)

type ScheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (event_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		schedule.EventID,
		schedule.StartTime,
		schedule.EndTime,
	).Scan(&schedule.ID)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	schedule := &models.Schedule{}
	query := `
		SELECT id, event_id, start_time, end_time
		FROM schedules
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.EventID,
		&schedule.StartTime,
		&schedule.EndTime,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return schedule, err
}

// GetByEventID returns the full schedule of an event ordered by start time.
func (r *ScheduleRepository) GetByEventID(ctx context.Context, eventID int64) ([]models.Schedule, error) {
	var schedules []models.Schedule
	query := `
		SELECT id, event_id, start_time, end_time
		FROM schedules
		WHERE event_id = $1
		ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var schedule models.Schedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.EventID,
			&schedule.StartTime,
			&schedule.EndTime,
		)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}
