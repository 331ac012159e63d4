package store

import (
	"context"
	"database/sql"
)

// Schema is portable between SQLite (demo sessions) and Postgres
// (persistent mode): TEXT primary keys minted with uuid, TIMESTAMP
// datetimes, DOUBLE PRECISION money columns.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		hours_worked DOUBLE PRECISION,
		odometer_start INTEGER NOT NULL,
		odometer_end INTEGER,
		miles_driven INTEGER,
		earnings DOUBLE PRECISION NOT NULL DEFAULT 0,
		tips DOUBLE PRECISION NOT NULL DEFAULT 0,
		gas_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		day_total DOUBLE PRECISION NOT NULL DEFAULT 0,
		hourly_pay DOUBLE PRECISION,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_start_time ON shifts (start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_end_time ON shifts (end_time)`,
	`CREATE TABLE IF NOT EXISTS maintenance_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mileage_interval INTEGER NOT NULL,
		last_service_mileage INTEGER NOT NULL DEFAULT 0,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT
	)`,
}

func applySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
