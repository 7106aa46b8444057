package infra

import (
	"fmt"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surfaces unique-constraint violations as gorm.ErrDuplicatedKey
		TranslateError: true,
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
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Insumo{},
		&model.Producto{},
		&model.Receta{},
		&model.SesionCaja{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.MovimientoInventario{},
		&model.ContadorTicket{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// At most one open session per user, enforced store-side so concurrent
	// opens cannot slip past the application-level check.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_sesion_abierta_por_usuario
		ON sesiones_caja (usuario_id) WHERE estado = 'ABIERTA'`).Error; err != nil {
		return fmt.Errorf("índice de sesión abierta: %w", err)
	}

	return nil
}
