package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		full_name     VARCHAR(255) NOT NULL,
		department    VARCHAR(255) NULL,
		role          ENUM('user', 'admin') NOT NULL DEFAULT 'user',
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		space      VARCHAR(255) NULL,
		capacity   INT NOT NULL DEFAULT 0,
		amenities  JSON NULL,
		status     VARCHAR(32) NOT NULL DEFAULT 'available',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		room_id      BIGINT NOT NULL,
		booking_date DATE NOT NULL,
		start_time   TIME NOT NULL,
		end_time     TIME NOT NULL,
		status       ENUM('pending', 'confirmed', 'cancelled') NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_bookings_room_date_status (room_id, booking_date, status),
		INDEX idx_bookings_user (user_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when they are missing. Existing tables are
// left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
