package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Insumo is a stock item (ingredient). StockActual is mutated only through
// atomic relative updates issued by the inventory repository — never by
// read-modify-write from callers. Negative balances are permitted: the ledger
// records consumption, it does not block overselling.
// Tipo: "BASE" | "PREPARADO"
type Insumo struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string          `gorm:"index;not null"`
	UnidadMedida string          `gorm:"type:varchar(50);not null"`
	StockActual  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StockMinimo  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tipo         string          `gorm:"type:varchar(20);not null;default:'BASE'"`
}

func (Insumo) TableName() string { return "insumos" }
