package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearInsumoRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=2"`
	UnidadMedida  string          `json:"unidad_medida"  validate:"required"`
	StockActual   decimal.Decimal `json:"stock_actual"   validate:"min=0"`
	StockMinimo   decimal.Decimal `json:"stock_minimo"   validate:"min=0"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"min=0"`
	Tipo          string          `json:"tipo"           validate:"omitempty,oneof=BASE PREPARADO"`
}

type ActualizarInsumoRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2"`
	UnidadMedida  *string          `json:"unidad_medida"`
	StockMinimo   *decimal.Decimal `json:"stock_minimo"   validate:"omitempty"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario" validate:"omitempty"`
	Tipo          *string          `json:"tipo"           validate:"omitempty,oneof=BASE PREPARADO"`
}

// AjusteStockRequest applies a signed delta to an insumo balance.
// Cantidad may be negative (correction) or positive (stock found / purchase).
type AjusteStockRequest struct {
	Cantidad decimal.Decimal `json:"cantidad" validate:"required"`
	Motivo   string          `json:"motivo"   validate:"required,min=3"`
}

// EntradaStockRequest records a manual stock-in; always positive.
type EntradaStockRequest struct {
	InsumoID string          `json:"insumo_id" validate:"required,uuid"`
	Cantidad decimal.Decimal `json:"cantidad"  validate:"required"`
	Motivo   string          `json:"motivo"`
}

// MovimientoFilter is bound from the query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	InsumoID string `form:"insumo_id" validate:"omitempty,uuid"`
	Tipo     string `form:"tipo"      validate:"omitempty,oneof=COMPRA VENTA_CONSUMO AJUSTE REVERSION_ANULACION"`
	Page     int    `form:"page,default=1"    validate:"min=1"`
	Limit    int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InsumoResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	UnidadMedida  string          `json:"unidad_medida"`
	StockActual   decimal.Decimal `json:"stock_actual"`
	StockMinimo   decimal.Decimal `json:"stock_minimo"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Tipo          string          `json:"tipo"`
}

type AjusteStockResponse struct {
	Mensaje    string          `json:"mensaje"`
	NuevoStock decimal.Decimal `json:"nuevo_stock"`
}

type MovimientoResponse struct {
	ID        string          `json:"id"`
	InsumoID  string          `json:"insumo_id"`
	Insumo    string          `json:"insumo"`
	UsuarioID string          `json:"usuario_id"`
	VentaID   *string         `json:"venta_id,omitempty"`
	Cantidad  decimal.Decimal `json:"cantidad"`
	Tipo      string          `json:"tipo"`
	Motivo    string          `json:"motivo"`
	CreatedAt string          `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
