package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReporteService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	// ExportarVentasCSV renders the day's sales as semicolon-separated CSV.
	ExportarVentasCSV(ctx context.Context, fecha string) ([]byte, error)
}

type reporteService struct {
	db         *gorm.DB
	inventario InventarioService
}

func NewReporteService(db *gorm.DB, inventario InventarioService) ReporteService {
	return &reporteService{db: db, inventario: inventario}
}

func (s *reporteService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	resumen, err := s.resumenHoy(ctx)
	if err != nil {
		return nil, err
	}
	metodos, err := s.metodosPagoHoy(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.topProductos(ctx, 5)
	if err != nil {
		return nil, err
	}
	alertas, err := s.inventario.AlertasStock(ctx)
	if err != nil {
		return nil, err
	}
	semanal, err := s.graficoSemanal(ctx)
	if err != nil {
		return nil, err
	}
	totalMes, err := s.totalMesActual(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		ResumenHoy:     *resumen,
		MetodosPago:    metodos,
		TopProductos:   top,
		AlertasStock:   alertas,
		GraficoSemanal: semanal,
		TotalMesActual: totalMes,
	}, nil
}

func (s *reporteService) resumenHoy(ctx context.Context) (*dto.ResumenHoy, error) {
	var row struct {
		Total    decimal.Decimal
		Cantidad int
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(monto_total), 0) AS total, COUNT(*) AS cantidad
		FROM ventas
		WHERE estado = 'COMPLETADA' AND DATE(created_at) = CURRENT_DATE`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	promedio := decimal.Zero
	if row.Cantidad > 0 {
		promedio = row.Total.Div(decimal.NewFromInt(int64(row.Cantidad))).Round(2)
	}
	return &dto.ResumenHoy{
		TotalVendido:   row.Total,
		CantidadVentas: row.Cantidad,
		TicketPromedio: promedio,
	}, nil
}

func (s *reporteService) metodosPagoHoy(ctx context.Context) ([]dto.VentaPorMetodo, error) {
	var rows []dto.VentaPorMetodo
	err := s.db.WithContext(ctx).Raw(`
		SELECT metodo_pago AS metodo, COALESCE(SUM(monto_total), 0) AS total, COUNT(*) AS cantidad
		FROM ventas
		WHERE estado = 'COMPLETADA' AND DATE(created_at) = CURRENT_DATE
		GROUP BY metodo_pago
		ORDER BY total DESC`).
		Scan(&rows).Error
	return rows, err
}

func (s *reporteService) topProductos(ctx context.Context, limit int) ([]dto.TopProducto, error) {
	var rows []dto.TopProducto
	err := s.db.WithContext(ctx).Raw(`
		SELECT p.nombre, SUM(d.cantidad) AS cantidad, COALESCE(SUM(d.subtotal), 0) AS ingresos
		FROM detalles_venta d
		JOIN ventas v ON v.id = d.venta_id
		JOIN productos p ON p.id = d.producto_id
		WHERE v.estado = 'COMPLETADA' AND DATE(v.created_at) = CURRENT_DATE
		GROUP BY p.nombre
		ORDER BY cantidad DESC
		LIMIT ?`, limit).
		Scan(&rows).Error
	return rows, err
}

func (s *reporteService) graficoSemanal(ctx context.Context) ([]dto.PuntoSerie, error) {
	var rows []struct {
		Fecha time.Time
		Total decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at) AS fecha, COALESCE(SUM(monto_total), 0) AS total
		FROM ventas
		WHERE estado = 'COMPLETADA' AND created_at >= CURRENT_DATE - INTERVAL '6 days'
		GROUP BY DATE(created_at)
		ORDER BY fecha ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Dense series: days without sales appear with zero
	porDia := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		porDia[r.Fecha.Format("2006-01-02")] = r.Total
	}
	serie := make([]dto.PuntoSerie, 0, 7)
	for i := 6; i >= 0; i-- {
		fecha := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		total, ok := porDia[fecha]
		if !ok {
			total = decimal.Zero
		}
		serie = append(serie, dto.PuntoSerie{Fecha: fecha, Total: total})
	}
	return serie, nil
}

func (s *reporteService) totalMesActual(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(monto_total), 0)
		FROM ventas
		WHERE estado = 'COMPLETADA'
		  AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)`).
		Scan(&total).Error
	return total, err
}

func (s *reporteService) ExportarVentasCSV(ctx context.Context, fecha string) ([]byte, error) {
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}

	var ventas []model.Venta
	err := s.db.WithContext(ctx).
		Preload("Usuario").
		Where("DATE(created_at) = ?", fecha).
		Order("created_at ASC").
		Find(&ventas).Error
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"ticket", "fecha", "hora", "cajero", "metodo_pago", "estado", "monto_total"}); err != nil {
		return nil, err
	}
	for i := range ventas {
		v := &ventas[i]
		cajero := ""
		if v.Usuario != nil {
			cajero = v.Usuario.Nombre
		}
		record := []string{
			v.NumeroTicket,
			v.CreatedAt.Format("2006-01-02"),
			v.CreatedAt.Format("15:04:05"),
			cajero,
			v.MetodoPago,
			v.Estado,
			v.MontoTotal.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
