package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS parking_spots (
		spot_number     INT PRIMARY KEY,
		type            TEXT NOT NULL,
		available       BOOLEAN NOT NULL DEFAULT true,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_spots_type_available ON parking_spots(type, available);`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id                  BIGSERIAL PRIMARY KEY,
		reference           TEXT NOT NULL,
		spot_number         INT NOT NULL REFERENCES parking_spots(spot_number),
		vehicle_reg_number  TEXT NOT NULL,
		price               DOUBLE PRECISION NOT NULL DEFAULT 0,
		in_time             TIMESTAMPTZ NOT NULL,
		out_time            TIMESTAMPTZ,
		vehicle_attrs       JSONB,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_tickets_reference ON tickets(reference);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_vehicle_reg_number ON tickets(vehicle_reg_number);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_in_time ON tickets(in_time);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM parking_spots) THEN
			INSERT INTO parking_spots (spot_number, type, available) VALUES
				(1, 'CAR', true),
				(2, 'CAR', true),
				(3, 'CAR', true),
				(4, 'BIKE', true),
				(5, 'BIKE', true);
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
