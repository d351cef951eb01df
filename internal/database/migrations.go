package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createEventsTable,
		createSchedulesTable,
		createTicketTypesTable,
		createTicketQuotasTable,
		createAddOnsTable,
		createPurchasesTable,
		createPurchaseItemsTable,
		createPurchaseAddOnsTable,
		createSchedulesStartIndex,
		createEventsSearchIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_logged_in TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT,
    type VARCHAR(50) NOT NULL,
    venue VARCHAR(255) NOT NULL DEFAULT '',
    currency CHAR(3) NOT NULL DEFAULT 'IDR',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    search_vector TSVECTOR GENERATED ALWAYS AS (
        to_tsvector('simple', title || ' ' || coalesce(description, '') || ' ' || venue)
    ) STORED
);`

const createEventsSearchIndex = `
CREATE INDEX IF NOT EXISTS events_search_idx
    ON events USING GIN (search_vector);`

const createSchedulesTable = `
CREATE TABLE IF NOT EXISTS schedules (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,

    CHECK (end_time > start_time)
);`

const createTicketTypesTable = `
CREATE TABLE IF NOT EXISTS ticket_types (
    id SERIAL PRIMARY KEY,
    schedule_id INTEGER NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    base_price BIGINT NOT NULL,
    early_bird_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    combo_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_quantity INTEGER NOT NULL DEFAULT 0,
    sold INTEGER NOT NULL DEFAULT 0,
    max_per_user INTEGER NOT NULL DEFAULT 4,
    early_day TIMESTAMP,

    CHECK (base_price >= 0),
    CHECK (early_bird_rate >= 0 AND early_bird_rate <= 1),
    CHECK (combo_rate >= 0 AND combo_rate <= 1),
    CHECK (sold >= 0)
);`

const createTicketQuotasTable = `
CREATE TABLE IF NOT EXISTS ticket_quotas (
    ticket_type_id INTEGER NOT NULL REFERENCES ticket_types(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    confirmed INTEGER NOT NULL DEFAULT 0,
    pending INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    PRIMARY KEY (ticket_type_id, user_id),
    CHECK (confirmed >= 0),
    CHECK (pending >= 0)
);`

const createAddOnsTable = `
CREATE TABLE IF NOT EXISTS add_ons (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    unit_price BIGINT NOT NULL,

    CHECK (unit_price >= 0)
);`

const createPurchasesTable = `
CREATE TABLE IF NOT EXISTS purchases (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    kind VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    original_total BIGINT NOT NULL DEFAULT 0,
    discount_total BIGINT NOT NULL DEFAULT 0,
    final_total BIGINT NOT NULL DEFAULT 0,
    payment_id VARCHAR(255),
    order_id VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (kind IN ('SINGLE', 'RECURRING')),
    CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'EXPIRED')),
    CHECK (payment_status IN ('PENDING', 'INITIATED', 'COMPLETED', 'FAILED', 'CANCELLED'))
);`

const createPurchaseItemsTable = `
CREATE TABLE IF NOT EXISTS purchase_items (
    id SERIAL PRIMARY KEY,
    purchase_id INTEGER NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
    schedule_id INTEGER NOT NULL REFERENCES schedules(id),
    ticket_type_id INTEGER NOT NULL REFERENCES ticket_types(id),
    quantity INTEGER NOT NULL,
    original_price BIGINT NOT NULL,
    early_bird_discount BIGINT NOT NULL DEFAULT 0,
    combo_discount BIGINT NOT NULL DEFAULT 0,
    final_price BIGINT NOT NULL,

    CHECK (quantity > 0)
);`

const createPurchaseAddOnsTable = `
CREATE TABLE IF NOT EXISTS purchase_add_ons (
    id SERIAL PRIMARY KEY,
    purchase_id INTEGER NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
    add_on_id INTEGER NOT NULL REFERENCES add_ons(id),
    quantity INTEGER NOT NULL,
    unit_price BIGINT NOT NULL,

    CHECK (quantity > 0)
);`

const createSchedulesStartIndex = `
CREATE INDEX IF NOT EXISTS schedules_event_start_idx
ON schedules (event_id, start_time);`
