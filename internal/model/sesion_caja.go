package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja represents the lifecycle of a cash register shift.
// Estado: "ABIERTA" | "CERRADA". The transition is one-way — a closed
// session is never reopened, and at most one ABIERTA exists per usuario.
type SesionCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoApertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoCierre is the physically counted cash declared at close
	MontoCierre *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Diferencia = MontoCierre - efectivo esperado; 0 while the session is open
	Diferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'ABIERTA'"`
	Notas      *string
	OpenedAt   time.Time
	ClosedAt   *time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
	Ventas  []Venta  `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }
