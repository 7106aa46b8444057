package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a completed sale header.
// Estado: "COMPLETADA" | "ANULADA" — the only mutation ever applied to a
// Venta is the one-way COMPLETADA → ANULADA transition.
// MetodoPago: "EFECTIVO" | "TARJETA" | "QR"
type Venta struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	// NumeroTicket is the 4-digit zero-padded daily sequence ("0001")
	NumeroTicket string          `gorm:"type:varchar(50);not null;index"`
	MontoTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'COMPLETADA'"`
	CreatedAt    time.Time

	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one line of a Venta with the price snapshot taken at sale
// time. Immutable once created; owned exclusively by its Venta.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }

// ContadorTicket backs the per-day ticket sequence. One row per calendar day,
// incremented atomically with an upsert inside the sale transaction.
type ContadorTicket struct {
	Fecha string `gorm:"type:date;primaryKey"`
	Valor int    `gorm:"not null"`
}

func (ContadorTicket) TableName() string { return "contadores_ticket" }
