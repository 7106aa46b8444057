package model

// Categoria classifies products in the catalog.
type Categoria struct {
	ID     int    `gorm:"primaryKey;autoIncrement"`
	Nombre string `gorm:"uniqueIndex;not null"`
}

func (Categoria) TableName() string { return "categorias" }
