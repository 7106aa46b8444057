package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error)
	ObtenerResumen(ctx context.Context, sesionID uuid.UUID) (*dto.ResumenSesionResponse, error)
	SesionActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)
	ListSesiones(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error)

	// SesionAbierta is called by VentaService to attach a sale to the
	// cashier's open session. Returns a Precondition error when none exists.
	SesionAbierta(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
}

type cajaService struct {
	repo        repository.CajaRepository
	dispatcher  *worker.Dispatcher
	reportEmail string
	currency    string
}

func NewCajaService(repo repository.CajaRepository, dispatcher *worker.Dispatcher, reportEmail, currency string) CajaService {
	return &cajaService{
		repo:        repo,
		dispatcher:  dispatcher,
		reportEmail: reportEmail,
		currency:    currency,
	}
}

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoApertura.IsNegative() {
		return nil, apierror.Validation("el monto de apertura no puede ser negativo")
	}

	// One open session per cajero
	existing, err := s.repo.FindSesionAbierta(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Conflict("ya existe una sesión de caja abierta para este usuario")
	}

	sesion := &model.SesionCaja{
		UsuarioID:     usuarioID,
		MontoApertura: req.MontoApertura,
		Estado:        "ABIERTA",
		OpenedAt:      time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		// The partial unique index catches concurrent opens that both passed
		// the existence check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("ya existe una sesión de caja abierta para este usuario")
		}
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("usuario_id", usuarioID.String()).
		Str("monto_apertura", req.MontoApertura.StringFixed(2)).
		Msg("sesión de caja abierta")

	return sesionToResponse(sesion), nil
}

// Cerrar closes the cashier's open session: it aggregates the session's sales,
// compares the declared cash against the expected amount and records the
// difference. The transition is one-way, a closed session never reopens.
func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error) {
	if req.MontoCierre.IsNegative() {
		return nil, apierror.Validation("el monto de cierre no puede ser negativo")
	}

	sesion, err := s.repo.FindSesionAbierta(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, apierror.Precondition("no hay sesión de caja abierta")
	}

	resumen, err := s.buildResumen(ctx, sesion)
	if err != nil {
		return nil, err
	}

	diferencia := req.MontoCierre.Sub(resumen.MontoEsperadoEfectivo)

	resultado := "CUADRE_EXACTO"
	switch {
	case diferencia.IsPositive():
		resultado = "SOBRANTE"
	case diferencia.IsNegative():
		resultado = "FALTANTE"
	}

	notas := ""
	if !diferencia.IsZero() {
		notas = fmt.Sprintf("[ALERTA] Diferencia de %s %s detectada.", diferencia.Abs().StringFixed(2), s.currency)
	}
	if req.Observaciones != nil && *req.Observaciones != "" {
		if notas != "" {
			notas += " "
		}
		notas += *req.Observaciones
	}

	now := time.Now()
	montoCierre := req.MontoCierre
	sesion.MontoCierre = &montoCierre
	sesion.Diferencia = diferencia
	sesion.Estado = "CERRADA"
	sesion.ClosedAt = &now
	if notas != "" {
		sesion.Notas = &notas
	}

	if err := s.repo.UpdateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("resultado", resultado).
		Str("diferencia", diferencia.StringFixed(2)).
		Msg("sesión de caja cerrada")

	// Best-effort close report to the configured recipient
	if s.dispatcher != nil && s.reportEmail != "" {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: s.reportEmail,
			Subject: fmt.Sprintf("Cierre de caja %s — %s", now.Format("02/01/2006"), resultado),
			Body:    s.renderCierreReporte(resumen, req.MontoCierre, diferencia, resultado),
		})
	}

	return &dto.CierreCajaResponse{
		Mensaje:   mensajeCierre(resultado, diferencia, s.currency),
		Resultado: resultado,
		Analisis: dto.AnalisisCierre{
			EfectivoContado:  req.MontoCierre,
			EfectivoEsperado: resumen.MontoEsperadoEfectivo,
			Diferencia:       diferencia,
		},
		Cierre: *sesionToResponse(sesion),
	}, nil
}

func (s *cajaService) ObtenerResumen(ctx context.Context, sesionID uuid.UUID) (*dto.ResumenSesionResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, apierror.NotFound("sesión de caja no encontrada")
	}
	return s.buildResumen(ctx, sesion)
}

func (s *cajaService) SesionActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.SesionAbierta(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) ListSesiones(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		out = append(out, *sesionToResponse(&sesiones[i]))
	}
	return out, total, nil
}

func (s *cajaService) SesionAbierta(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionAbierta(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, apierror.Precondition("no hay sesión de caja abierta")
	}
	return sesion, nil
}

// buildResumen aggregates the session's sales by payment method. Anulled sales
// contribute to the anulación counters only, they never count toward cash.
func (s *cajaService) buildResumen(ctx context.Context, sesion *model.SesionCaja) (*dto.ResumenSesionResponse, error) {
	ventas, err := s.repo.ListVentasSesion(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}

	totalEfectivo := decimal.Zero
	totalTarjeta := decimal.Zero
	totalQR := decimal.Zero
	totalAnulado := decimal.Zero
	cantidadVentas := 0
	cantidadAnulaciones := 0

	for i := range ventas {
		v := &ventas[i]
		if v.Estado == "ANULADA" {
			totalAnulado = totalAnulado.Add(v.MontoTotal)
			cantidadAnulaciones++
			continue
		}
		cantidadVentas++
		switch v.MetodoPago {
		case "EFECTIVO":
			totalEfectivo = totalEfectivo.Add(v.MontoTotal)
		case "TARJETA":
			totalTarjeta = totalTarjeta.Add(v.MontoTotal)
		case "QR":
			totalQR = totalQR.Add(v.MontoTotal)
		}
	}

	electronicas := totalTarjeta.Add(totalQR)

	return &dto.ResumenSesionResponse{
		SesionID:                sesion.ID.String(),
		FechaApertura:           sesion.OpenedAt.Format(time.RFC3339),
		MontoApertura:           sesion.MontoApertura,
		TotalVentas:             totalEfectivo.Add(electronicas),
		TotalEfectivo:           totalEfectivo,
		TotalTarjeta:            totalTarjeta,
		TotalQR:                 totalQR,
		TotalAnulado:            totalAnulado,
		CantidadVentas:          cantidadVentas,
		CantidadAnulaciones:     cantidadAnulaciones,
		MontoEsperadoEfectivo:   sesion.MontoApertura.Add(totalEfectivo),
		TotalVentasElectronicas: electronicas,
	}, nil
}

func (s *cajaService) renderCierreReporte(r *dto.ResumenSesionResponse, contado, diferencia decimal.Decimal, resultado string) string {
	return fmt.Sprintf(
		"Resumen de cierre de caja\n\n"+
			"Apertura: %s %s\n"+
			"Ventas en efectivo: %s %s\n"+
			"Ventas con tarjeta: %s %s\n"+
			"Ventas con QR: %s %s\n"+
			"Ventas anuladas: %s %s\n\n"+
			"Efectivo esperado: %s %s\n"+
			"Efectivo contado: %s %s\n"+
			"Diferencia: %s %s (%s)\n",
		r.MontoApertura.StringFixed(2), s.currency,
		r.TotalEfectivo.StringFixed(2), s.currency,
		r.TotalTarjeta.StringFixed(2), s.currency,
		r.TotalQR.StringFixed(2), s.currency,
		r.TotalAnulado.StringFixed(2), s.currency,
		r.MontoEsperadoEfectivo.StringFixed(2), s.currency,
		contado.StringFixed(2), s.currency,
		diferencia.StringFixed(2), s.currency, resultado,
	)
}

func mensajeCierre(resultado string, diferencia decimal.Decimal, currency string) string {
	switch resultado {
	case "SOBRANTE":
		return fmt.Sprintf("Caja cerrada con sobrante de %s %s", diferencia.Abs().StringFixed(2), currency)
	case "FALTANTE":
		return fmt.Sprintf("Caja cerrada con faltante de %s %s", diferencia.Abs().StringFixed(2), currency)
	default:
		return "Caja cerrada con cuadre exacto"
	}
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:            s.ID.String(),
		UsuarioID:     s.UsuarioID.String(),
		MontoApertura: s.MontoApertura,
		MontoCierre:   s.MontoCierre,
		Diferencia:    s.Diferencia,
		Estado:        s.Estado,
		Notas:         s.Notas,
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
