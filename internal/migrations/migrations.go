// Package migrations bootstraps the MySQL schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Logger receives non-fatal index warnings.
type Logger interface {
	Warnf(format string, args ...interface{})
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS outfits (
		id CHAR(36) NOT NULL PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL,
		title VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		images JSON NOT NULL,
		size VARCHAR(8) NOT NULL,
		category VARCHAR(32) NOT NULL,
		style_tags JSON NOT NULL,
		price_per_hour DECIMAL(10,2) NOT NULL,
		price_per_day DECIMAL(10,2) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		state VARCHAR(100) NOT NULL DEFAULT '',
		zip_code VARCHAR(20) NOT NULL DEFAULT '',
		country VARCHAR(100) NOT NULL DEFAULT '',
		latitude DOUBLE NULL,
		longitude DOUBLE NULL,
		availability_dates JSON NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		total_ratings INT NOT NULL DEFAULT 0,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_outfits_owner (owner_id),
		KEY idx_outfits_filter (available, category, size),
		KEY idx_outfits_price (price_per_day),
		KEY idx_outfits_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id CHAR(36) NOT NULL PRIMARY KEY,
		outfit_id CHAR(36) NOT NULL,
		renter_id VARCHAR(64) NOT NULL,
		owner_id VARCHAR(64) NOT NULL,
		start_date DATETIME(6) NOT NULL,
		end_date DATETIME(6) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL,
		status VARCHAR(16) NOT NULL,
		notes TEXT NOT NULL,
		cancel_reason VARCHAR(500) NOT NULL DEFAULT '',
		returned_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_rentals_renter (renter_id),
		KEY idx_rentals_owner (owner_id),
		KEY idx_rentals_due (status, start_date),
		CONSTRAINT fk_rentals_outfit FOREIGN KEY (outfit_id) REFERENCES outfits (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id CHAR(36) NOT NULL PRIMARY KEY,
		rating TINYINT NOT NULL,
		comment VARCHAR(500) NULL,
		from_user_id VARCHAR(64) NOT NULL,
		target_type VARCHAR(16) NOT NULL,
		target_id VARCHAR(64) NOT NULL,
		rental_id CHAR(36) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NULL,
		KEY idx_ratings_target (target_type, target_id),
		CONSTRAINT fk_ratings_rental FOREIGN KEY (rental_id) REFERENCES rentals (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		rating DOUBLE NOT NULL DEFAULT 0,
		total_ratings INT NOT NULL DEFAULT 0,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// indexes are best effort: they fail harmlessly when already present.
var indexes = []string{
	`ALTER TABLE outfits ADD FULLTEXT INDEX ft_outfits_text (title, description)`,
}

// Apply creates missing tables. Index failures are reported to log only.
func Apply(ctx context.Context, db *sql.DB, log Logger) error {
	for i, stmt := range tables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply table migration %d: %w", i+1, err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil && log != nil {
			log.Warnf("index migration skipped: %v", err)
		}
	}
	return nil
}
