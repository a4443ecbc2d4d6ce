package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upSeedDemoCatalog, downSeedDemoCatalog)
}

// Seeds a minimal catalog so a fresh install has something to sell and rent.
func upSeedDemoCatalog(tx *sql.Tx) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM rackets").Scan(&count); err != nil {
		return fmt.Errorf("failed to check rackets: %w", err)
	}
	if count > 0 {
		return nil
	}

	rackets := `
		INSERT INTO rackets (name, brand, daily_fee, deposit, base_quantity, is_active, created_at, updated_at)
		VALUES
			('Pure Drive', 'Babolat', 5000, 30000, 3, true, NOW(), NOW()),
			('Speed MP', 'Head', 5000, 30000, 2, true, NOW(), NOW()),
			('Blade 98', 'Wilson', 6000, 40000, 2, true, NOW(), NOW())
	`
	if _, err := tx.Exec(rackets); err != nil {
		return fmt.Errorf("failed to seed rackets: %w", err)
	}

	products := `
		INSERT INTO products (name, description, price, stock, is_active, created_at, updated_at)
		VALUES
			('RPM Blast 17 reel', 'Polyester string reel', 180000, 10, true, NOW(), NOW()),
			('Overgrip 3-pack', '', 9000, 50, true, NOW(), NOW()),
			('Dampener set', '', 6000, 40, true, NOW(), NOW())
	`
	if _, err := tx.Exec(products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

func downSeedDemoCatalog(tx *sql.Tx) error {
	if _, err := tx.Exec("DELETE FROM rackets WHERE brand IN ('Babolat', 'Head', 'Wilson')"); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM products WHERE name IN ('RPM Blast 17 reel', 'Overgrip 3-pack', 'Dampener set')")
	return err
}
