package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement kinds. Every stock balance change is paired with exactly one
// movement row in the same transaction; the sum of movements for an insumo
// equals its StockActual.
const (
	MovCompra             = "COMPRA"
	MovVentaConsumo       = "VENTA_CONSUMO"
	MovAjuste             = "AJUSTE"
	MovReversionAnulacion = "REVERSION_ANULACION"
)

// MovimientoInventario is one immutable, signed audit-log entry for a stock
// balance change. Append-only — never updated or deleted; corrections create
// inverse entries.
type MovimientoInventario struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InsumoID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioID uuid.UUID  `gorm:"type:uuid;not null"`
	VentaID   *uuid.UUID `gorm:"type:uuid;index"`
	// Cantidad is signed: positive = entrada, negative = salida
	Cantidad  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tipo      string          `gorm:"type:varchar(30);not null"`
	Motivo    string
	CreatedAt time.Time

	Insumo *Insumo `gorm:"foreignKey:InsumoID"`
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
