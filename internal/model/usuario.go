package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores system users with role-based access.
// Rol: "CAJERO" | "ADMINISTRADOR"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	// PinHash allows quick cashier switching on a shared terminal; nil = disabled
	PinHash   *string
	Rol       string `gorm:"type:varchar(20);not null;default:'CAJERO'"`
	Activo    bool   `gorm:"not null;default:true"`
	EsMaestro bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }
