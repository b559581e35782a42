package migrations

import (
	"database/sql"
	"time"
)

// AutoMigrateSKUs creates the skus table if it does not exist.
func AutoMigrateSKUs(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS skus (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DOUBLE NOT NULL,
			stock INT NOT NULL,
			sales INT NOT NULL DEFAULT 0,
			is_launched TINYINT(1) NOT NULL DEFAULT 1,
			default_image_url VARCHAR(255) NOT NULL DEFAULT '',
			sale_attrs TEXT
		) ENGINE=InnoDB;
	`
	return execWithRetry(retries, db, query)
}

// AutoMigrateAddresses creates the addresses table if it does not exist.
func AutoMigrateAddresses(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS addresses (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			receiver VARCHAR(64) NOT NULL,
			address VARCHAR(255) NOT NULL,
			receiver_mobile VARCHAR(20) NOT NULL,
			tag VARCHAR(32) NOT NULL DEFAULT '',
			is_default TINYINT(1) NOT NULL DEFAULT 0,
			is_delete TINYINT(1) NOT NULL DEFAULT 0,
			INDEX idx_addresses_user (user_id)
		) ENGINE=InnoDB;
	`
	return execWithRetry(retries, db, query)
}

// AutoMigrateOrders creates the orders table if it does not exist. The
// UNIQUE key on order_id is the backstop against two orders for the same
// user landing in the same second.
func AutoMigrateOrders(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(32) NOT NULL UNIQUE,
			user_id INT NOT NULL,
			total_amount DOUBLE NOT NULL,
			total_count INT NOT NULL,
			status VARCHAR(20) NOT NULL,
			freight DOUBLE NOT NULL DEFAULT 0,
			pay_method INT NOT NULL DEFAULT 1,
			receiver VARCHAR(64) NOT NULL,
			address VARCHAR(255) NOT NULL,
			receiver_mobile VARCHAR(20) NOT NULL,
			tag VARCHAR(32) NOT NULL DEFAULT '',
			INDEX idx_orders_user (user_id)
		) ENGINE=InnoDB;
	`
	return execWithRetry(retries, db, query)
}

// AutoMigrateOrderGoods creates the order_goods table if it does not exist.
func AutoMigrateOrderGoods(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_goods (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			sku_id INT NOT NULL,
			count INT NOT NULL,
			price DOUBLE NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB;
	`
	return execWithRetry(retries, db, query)
}

func execWithRetry(retries int, db *sql.DB, query string) error {
	_, err := db.Exec(query)
	if err != nil {
		// Retry creating the table
		for i := 0; i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
			if err == nil {
				break
			}
		}
	}
	return err
}
