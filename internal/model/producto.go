package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable catalog item. Its recipe (Recetas) lists the insumos
// consumed per unit sold.
type Producto struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string          `gorm:"index;not null"`
	Precio          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoProduccion decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CategoriaID     *int
	ImagenURL       *string `gorm:"column:imagen_url"`
	Activo          bool    `gorm:"not null;default:true"`
	UpdatedAt       time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Recetas   []Receta   `gorm:"foreignKey:ProductoID"`
}

func (Producto) TableName() string { return "productos" }

// Receta is one bill-of-materials line: CantidadRequerida units of the insumo
// are consumed per unit of the producto sold.
type Receta struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InsumoID          uuid.UUID       `gorm:"type:uuid;not null"`
	CantidadRequerida decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Insumo *Insumo `gorm:"foreignKey:InsumoID"`
}

func (Receta) TableName() string { return "recetas" }
