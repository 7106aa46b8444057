package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecetaLineaRequest struct {
	InsumoID          string          `json:"insumo_id"          validate:"required,uuid"`
	CantidadRequerida decimal.Decimal `json:"cantidad_requerida" validate:"required"`
}

type CrearProductoRequest struct {
	Nombre          string               `json:"nombre"           validate:"required,min=2"`
	Precio          decimal.Decimal      `json:"precio"           validate:"required"`
	CostoProduccion decimal.Decimal      `json:"costo_produccion" validate:"min=0"`
	CategoriaID     *int                 `json:"categoria_id"`
	ImagenURL       *string              `json:"imagen_url"       validate:"omitempty,url"`
	Receta          []RecetaLineaRequest `json:"receta"           validate:"omitempty,dive"`
}

type ActualizarProductoRequest struct {
	Nombre          *string              `json:"nombre"           validate:"omitempty,min=2"`
	Precio          *decimal.Decimal     `json:"precio"`
	CostoProduccion *decimal.Decimal     `json:"costo_produccion"`
	CategoriaID     *int                 `json:"categoria_id"`
	ImagenURL       *string              `json:"imagen_url"       validate:"omitempty,url"`
	// Receta, when present, replaces the full recipe
	Receta []RecetaLineaRequest `json:"receta" validate:"omitempty,dive"`
}

type CrearCategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RecetaLineaResponse struct {
	InsumoID          string          `json:"insumo_id"`
	Insumo            string          `json:"insumo"`
	UnidadMedida      string          `json:"unidad_medida"`
	CantidadRequerida decimal.Decimal `json:"cantidad_requerida"`
}

type ProductoResponse struct {
	ID              string                `json:"id"`
	Nombre          string                `json:"nombre"`
	Precio          decimal.Decimal       `json:"precio"`
	CostoProduccion decimal.Decimal       `json:"costo_produccion"`
	CategoriaID     *int                  `json:"categoria_id,omitempty"`
	Categoria       *string               `json:"categoria,omitempty"`
	ImagenURL       *string               `json:"imagen_url,omitempty"`
	Activo          bool                  `json:"activo"`
	Receta          []RecetaLineaResponse `json:"receta"`
}

type CategoriaResponse struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}

// MenuItemResponse is the public, cacheable view of an active product.
type MenuItemResponse struct {
	ID        string          `json:"id"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	Categoria *string         `json:"categoria,omitempty"`
	ImagenURL *string         `json:"imagen_url,omitempty"`
}
