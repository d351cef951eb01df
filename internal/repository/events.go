package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tiketin/internal/database"
	"tiketin/internal/models"
	"tiketin/internal/search"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, type, venue, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Type,
		event.Venue,
		event.Currency,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, title, description, type, venue, currency, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Type,
		&event.Venue,
		&event.Currency,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

// List filters in SQL so browsing stays searchable when the index is down:
// text queries run against the events search vector, date filters match
// events with a schedule starting that day.
func (r *EventRepository) List(ctx context.Context, query, date string, page, pageSize int) ([]models.Event, error) {
	var events []models.Event
	var args []interface{}
	argIndex := 1
	var searchArgIndex int

	sqlQuery := `
		SELECT id, title, description, type, venue, currency, created_at, updated_at
		FROM events
		WHERE 1=1`

	if query != "" {
		searchArgIndex = argIndex
		sqlQuery += fmt.Sprintf(" AND search_vector @@ to_tsquery('simple', $%d)", argIndex)
		args = append(args, prepareSearchQuery(query))
		argIndex++
	}

	if date != "" {
		sqlQuery += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM schedules s
			WHERE s.event_id = events.id AND DATE(s.start_time) = $%d)`, argIndex)
		args = append(args, date)
		argIndex++
	}

	if query != "" {
		sqlQuery += fmt.Sprintf(" ORDER BY ts_rank(search_vector, to_tsquery('simple', $%d)) DESC, id ASC", searchArgIndex)
	} else {
		sqlQuery += " ORDER BY id ASC"
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}
	sqlQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Type,
			&event.Venue,
			&event.Currency,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// prepareSearchQuery turns free text into a tsquery: each word becomes a
// prefix match, words are joined with AND. Queries that already carry
// tsquery operators pass through untouched.
func prepareSearchQuery(query string) string {
	if containsSearchOperators(query) {
		return query
	}

	words := strings.Fields(strings.TrimSpace(query))
	if len(words) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(words))
	for _, word := range words {
		formatted = append(formatted, word+":*")
	}

	return strings.Join(formatted, " & ")
}

func containsSearchOperators(query string) bool {
	for _, op := range []string{"&", "|", "!", "(", ")", ":", "*"} {
		if strings.Contains(query, op) {
			return true
		}
	}
	return false
}

// EventElasticsearchRepository serves event browsing from the search index.
// Postgres stays the source of truth; documents are indexed on create and
// whenever schedules change.
type EventElasticsearchRepository struct {
	es *search.ElasticsearchClient
}

func NewEventElasticsearchRepository(es *search.ElasticsearchClient) *EventElasticsearchRepository {
	return &EventElasticsearchRepository{es: es}
}

func (r *EventElasticsearchRepository) List(ctx context.Context, query, date string, page, pageSize int) ([]search.EventDocument, error) {
	return r.es.Search(ctx, query, date, page, pageSize)
}

func (r *EventElasticsearchRepository) GetByID(ctx context.Context, id int64) (*search.EventDocument, error) {
	return r.es.GetByID(ctx, id)
}

func (r *EventElasticsearchRepository) Index(ctx context.Context, event *models.Event, nextStart *time.Time) error {
	return r.es.IndexEvent(ctx, event, nextStart)
}
