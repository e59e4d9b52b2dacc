package database

import (
	"context"
	"database/sql"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// schema lists the table definitions in dependency order. Seats carry a
// UNIQUE (room_id, row_label, seat_number) so a room cannot hold two
// seats with the same human-facing label, and order_seats carries a
// UNIQUE (showing_id, seat_id) so two orders can never claim the same
// seat for the same showing.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(20) NOT NULL,
		width INT UNSIGNED NOT NULL,
		height INT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_rooms_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS seat_categories (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(20) NOT NULL,
		surcharge DECIMAL(4,2) NOT NULL,
		factor DOUBLE UNSIGNED NOT NULL,
		width INT UNSIGNED NOT NULL,
		height INT UNSIGNED NOT NULL,
		color_hex VARCHAR(6) NOT NULL,
		icon TEXT,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seat_categories_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_id INT UNSIGNED NOT NULL,
		category_id INT UNSIGNED NOT NULL,
		row_label VARCHAR(1) NOT NULL,
		seat_number INT NOT NULL,
		x INT UNSIGNED NOT NULL,
		y INT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seats_room_row_number (room_id, row_label, seat_number),
		FOREIGN KEY (room_id) REFERENCES rooms(id),
		FOREIGN KEY (category_id) REFERENCES seat_categories(id)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		role INT UNSIGNED NOT NULL DEFAULT 1,
		state TINYINT UNSIGNED NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		password_hash VARCHAR(72) NOT NULL,
		email VARCHAR(254) NOT NULL,
		name VARCHAR(60) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_accounts_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		account_id INT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_auth_tokens_hash (token_hash),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS activation_keys (
		account_id INT UNSIGNED NOT NULL,
		activation_key VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_activation_keys_key (activation_key),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS email_change_requests (
		account_id INT UNSIGNED NOT NULL,
		new_email VARCHAR(254) NOT NULL,
		old_email_key INT UNSIGNED NOT NULL,
		new_email_key INT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_email_change_account (account_id),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id INT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		salutation VARCHAR(30) NOT NULL,
		name VARCHAR(50) NOT NULL,
		street VARCHAR(100) NOT NULL,
		postal_code CHAR(5) NOT NULL,
		city VARCHAR(30) NOT NULL,
		phone VARCHAR(20),
		PRIMARY KEY (id),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(100) NOT NULL,
		poster_url TEXT NOT NULL,
		backdrop_url TEXT NOT NULL,
		trailer_youtube_id VARCHAR(11) NOT NULL,
		short_description TEXT NOT NULL,
		description TEXT NOT NULL,
		fsk TINYINT UNSIGNED NOT NULL,
		duration_min SMALLINT UNSIGNED NOT NULL,
		country VARCHAR(20) NOT NULL,
		release_date DATE NOT NULL,
		recommended TINYINT(1) NOT NULL DEFAULT 0,
		active TINYINT(1) NOT NULL DEFAULT 1,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS showings (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id INT UNSIGNED NOT NULL,
		room_id INT UNSIGNED NOT NULL,
		base_price DOUBLE UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		three_d TINYINT(1) NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		FOREIGN KEY (movie_id) REFERENCES movies(id),
		FOREIGN KEY (room_id) REFERENCES rooms(id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT,
		showing_id INT UNSIGNED NOT NULL,
		account_id INT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		salutation VARCHAR(30) NOT NULL,
		name VARCHAR(50) NOT NULL,
		street VARCHAR(100) NOT NULL,
		postal_code CHAR(5) NOT NULL,
		city VARCHAR(30) NOT NULL,
		phone VARCHAR(20),
		PRIMARY KEY (id),
		FOREIGN KEY (showing_id) REFERENCES showings(id),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_seats (
		order_id INT UNSIGNED NOT NULL,
		showing_id INT UNSIGNED NOT NULL,
		seat_id INT UNSIGNED NOT NULL,
		price DOUBLE UNSIGNED NOT NULL,
		UNIQUE KEY uq_order_seats_showing_seat (showing_id, seat_id),
		FOREIGN KEY (order_id) REFERENCES orders(id),
		FOREIGN KEY (seat_id) REFERENCES seats(id)
	)`,
}

// Migrate creates missing tables and seeds the initial admin account
// (role 999, active) used to open the admin panel after a fresh install.
func Migrate(ctx context.Context, db *sql.DB, bcryptCost int) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return seedAdmin(ctx, db, bcryptCost)
}

func seedAdmin(ctx context.Context, db *sql.DB, bcryptCost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("Initial123"), bcryptCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO accounts (password_hash, name, email, role, state) VALUES (?,?,?,?,?)",
		string(hash), "Admin", "admin@capitol-cinema.de", 999, 1)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		// Admin already exists.
		return nil
	}
	return err
}
