package dto

import "github.com/shopspring/decimal"

// ResumenHoy carries today's aggregate sales figures.
type ResumenHoy struct {
	TotalVendido   decimal.Decimal `json:"total_vendido"`
	CantidadVentas int             `json:"cantidad_ventas"`
	TicketPromedio decimal.Decimal `json:"ticket_promedio"`
}

type VentaPorMetodo struct {
	Metodo   string          `json:"metodo"`
	Total    decimal.Decimal `json:"total"`
	Cantidad int             `json:"cantidad"`
}

type TopProducto struct {
	Nombre   string          `json:"nombre"`
	Cantidad int             `json:"cantidad"`
	Ingresos decimal.Decimal `json:"ingresos"`
}

type PuntoSerie struct {
	Fecha string          `json:"fecha"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

type DashboardResponse struct {
	ResumenHoy     ResumenHoy       `json:"resumen_hoy"`
	MetodosPago    []VentaPorMetodo `json:"metodos_pago"`
	TopProductos   []TopProducto    `json:"top_productos"`
	AlertasStock   []InsumoResponse `json:"alertas_stock"`
	GraficoSemanal []PuntoSerie     `json:"grafico_semanal"`
	TotalMesActual decimal.Decimal  `json:"total_mes_actual"`
}
