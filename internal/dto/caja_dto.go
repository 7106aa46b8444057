package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoApertura decimal.Decimal `json:"monto_apertura" validate:"min=0"`
}

type CerrarCajaRequest struct {
	MontoCierre   decimal.Decimal `json:"monto_cierre" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionCajaResponse struct {
	ID            string          `json:"id"`
	UsuarioID     string          `json:"usuario_id"`
	MontoApertura decimal.Decimal `json:"monto_apertura"`
	MontoCierre   *decimal.Decimal `json:"monto_cierre,omitempty"`
	Diferencia    decimal.Decimal `json:"diferencia"`
	Estado        string          `json:"estado"`
	Notas         *string         `json:"notas,omitempty"`
	OpenedAt      string          `json:"opened_at"`
	ClosedAt      *string         `json:"closed_at,omitempty"`
}

// ResumenSesionResponse aggregates a session's sales by payment method and
// state. Usable before closing, and reused internally by the close operation.
type ResumenSesionResponse struct {
	SesionID            string          `json:"sesion_id"`
	FechaApertura       string          `json:"fecha_apertura"`
	MontoApertura       decimal.Decimal `json:"monto_apertura"`
	TotalVentas         decimal.Decimal `json:"total_ventas"`
	TotalEfectivo       decimal.Decimal `json:"total_efectivo"`
	TotalTarjeta        decimal.Decimal `json:"total_tarjeta"`
	TotalQR             decimal.Decimal `json:"total_qr"`
	TotalAnulado        decimal.Decimal `json:"total_anulado"`
	CantidadVentas      int             `json:"cantidad_ventas"`
	CantidadAnulaciones int             `json:"cantidad_anulaciones"`
	// MontoEsperadoEfectivo = apertura + ventas EFECTIVO completadas
	MontoEsperadoEfectivo    decimal.Decimal `json:"monto_esperado_efectivo"`
	TotalVentasElectronicas  decimal.Decimal `json:"total_ventas_electronicas"`
}

// CierreCajaResponse is returned by the close operation.
// Resultado: "CUADRE_EXACTO" | "SOBRANTE" | "FALTANTE"
type CierreCajaResponse struct {
	Mensaje   string             `json:"mensaje"`
	Resultado string             `json:"resultado"`
	Analisis  AnalisisCierre     `json:"analisis"`
	Cierre    SesionCajaResponse `json:"cierre"`
}

type AnalisisCierre struct {
	EfectivoContado  decimal.Decimal `json:"efectivo_contado"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	Diferencia       decimal.Decimal `json:"diferencia"`
}
