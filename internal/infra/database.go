package infra

import (
	"fmt"

	"github.com/sergio129/SaludDirecta/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the full schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
		&model.HistorialPrecio{},
		&model.Factura{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// Partial index for the retry cron query; GORM tags cannot express it.
	return db.Exec(`
		DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_pending_retry') THEN
		    CREATE INDEX idx_facturas_pending_retry
		        ON facturas (next_retry_at)
		        WHERE estado = 'error' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`).Error
}
