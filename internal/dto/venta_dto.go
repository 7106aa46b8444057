package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=all"`   // COMPLETADA | ANULADA | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type ProcesarVentaRequest struct {
	MetodoPago string                `json:"metodo_pago" validate:"required,oneof=EFECTIVO TARJETA QR"`
	Detalles   []DetalleVentaRequest `json:"detalles"    validate:"required,min=1,dive"`
	// ClienteEmail: optional — when present, the email worker mails the ticket PDF.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	Producto       string          `json:"producto"`
	ProductoID     string          `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string                 `json:"id"`
	NumeroTicket string                 `json:"numero_ticket"`
	SesionCajaID string                 `json:"sesion_caja_id"`
	UsuarioID    string                 `json:"usuario_id"`
	Detalles     []DetalleVentaResponse `json:"detalles"`
	MontoTotal   decimal.Decimal        `json:"monto_total"`
	MetodoPago   string                 `json:"metodo_pago"`
	Estado       string                 `json:"estado"`
	CreatedAt    string                 `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
