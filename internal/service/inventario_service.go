package service

import (
	"context"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventarioService interface {
	CrearInsumo(ctx context.Context, req dto.CrearInsumoRequest) (*dto.InsumoResponse, error)
	ActualizarInsumo(ctx context.Context, id uuid.UUID, req dto.ActualizarInsumoRequest) (*dto.InsumoResponse, error)
	ObtenerInsumo(ctx context.Context, id uuid.UUID) (*dto.InsumoResponse, error)
	ListarInsumos(ctx context.Context) ([]dto.InsumoResponse, error)

	// AjustarStock applies a signed manual correction to an insumo balance.
	AjustarStock(ctx context.Context, usuarioID, insumoID uuid.UUID, req dto.AjusteStockRequest) (*dto.AjusteStockResponse, error)
	// RegistrarEntrada records a purchase / stock-in; cantidad must be positive.
	RegistrarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaStockRequest) (*dto.AjusteStockResponse, error)

	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	AlertasStock(ctx context.Context) ([]dto.InsumoResponse, error)

	// DescontarStockTx and RegistrarMovimientoTx are the transactional
	// primitives the sale path composes inside its own transaction.
	DescontarStockTx(tx *gorm.DB, insumoID uuid.UUID, delta decimal.Decimal) error
	RegistrarMovimientoTx(tx *gorm.DB, mov *model.MovimientoInventario) error
}

type inventarioService struct {
	repo repository.InsumoRepository
}

func NewInventarioService(repo repository.InsumoRepository) InventarioService {
	return &inventarioService{repo: repo}
}

func (s *inventarioService) CrearInsumo(ctx context.Context, req dto.CrearInsumoRequest) (*dto.InsumoResponse, error) {
	tipo := req.Tipo
	if tipo == "" {
		tipo = "BASE"
	}
	insumo := &model.Insumo{
		Nombre:        req.Nombre,
		UnidadMedida:  req.UnidadMedida,
		StockActual:   req.StockActual,
		StockMinimo:   req.StockMinimo,
		CostoUnitario: req.CostoUnitario,
		Tipo:          tipo,
	}
	if err := s.repo.Create(ctx, insumo); err != nil {
		return nil, err
	}
	return insumoToResponse(insumo), nil
}

func (s *inventarioService) ActualizarInsumo(ctx context.Context, id uuid.UUID, req dto.ActualizarInsumoRequest) (*dto.InsumoResponse, error) {
	insumo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("insumo no encontrado")
	}

	// StockActual is intentionally absent here: balances change only through
	// AjustarStock / RegistrarEntrada so every change leaves a movement.
	if req.Nombre != nil {
		insumo.Nombre = *req.Nombre
	}
	if req.UnidadMedida != nil {
		insumo.UnidadMedida = *req.UnidadMedida
	}
	if req.StockMinimo != nil {
		insumo.StockMinimo = *req.StockMinimo
	}
	if req.CostoUnitario != nil {
		insumo.CostoUnitario = *req.CostoUnitario
	}
	if req.Tipo != nil {
		insumo.Tipo = *req.Tipo
	}

	if err := s.repo.Update(ctx, insumo); err != nil {
		return nil, err
	}
	return insumoToResponse(insumo), nil
}

func (s *inventarioService) ObtenerInsumo(ctx context.Context, id uuid.UUID) (*dto.InsumoResponse, error) {
	insumo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("insumo no encontrado")
	}
	return insumoToResponse(insumo), nil
}

func (s *inventarioService) ListarInsumos(ctx context.Context) ([]dto.InsumoResponse, error) {
	insumos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InsumoResponse, 0, len(insumos))
	for i := range insumos {
		out = append(out, *insumoToResponse(&insumos[i]))
	}
	return out, nil
}

// AjustarStock classifies the movement by the sign of the delta: positive
// deltas are recorded as COMPRA (stock found / purchase), negative ones as
// AJUSTE (spoilage, breakage, correction).
func (s *inventarioService) AjustarStock(ctx context.Context, usuarioID, insumoID uuid.UUID, req dto.AjusteStockRequest) (*dto.AjusteStockResponse, error) {
	if req.Cantidad.IsZero() {
		return nil, apierror.Validation("la cantidad del ajuste no puede ser cero")
	}

	tipo := model.MovAjuste
	if req.Cantidad.IsPositive() {
		tipo = model.MovCompra
	}

	return s.aplicarAjuste(ctx, usuarioID, insumoID, req.Cantidad, tipo, req.Motivo)
}

func (s *inventarioService) RegistrarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaStockRequest) (*dto.AjusteStockResponse, error) {
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad de la entrada debe ser positiva")
	}
	insumoID, err := uuid.Parse(req.InsumoID)
	if err != nil {
		return nil, apierror.Validation("insumo_id inválido")
	}
	motivo := req.Motivo
	if motivo == "" {
		motivo = "Entrada de stock"
	}
	return s.aplicarAjuste(ctx, usuarioID, insumoID, req.Cantidad, model.MovCompra, motivo)
}

// aplicarAjuste runs the balance update and its movement in one transaction.
func (s *inventarioService) aplicarAjuste(ctx context.Context, usuarioID, insumoID uuid.UUID, delta decimal.Decimal, tipo, motivo string) (*dto.AjusteStockResponse, error) {
	var nuevoStock decimal.Decimal

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AjustarStockTx(tx, insumoID, delta); err != nil {
			if err == gorm.ErrRecordNotFound {
				return apierror.NotFound("insumo no encontrado")
			}
			return err
		}

		mov := &model.MovimientoInventario{
			InsumoID:  insumoID,
			UsuarioID: usuarioID,
			Cantidad:  delta,
			Tipo:      tipo,
			Motivo:    motivo,
		}
		if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
			return err
		}

		insumo, err := s.repo.FindByIDTx(tx, insumoID)
		if err != nil {
			return err
		}
		nuevoStock = insumo.StockActual
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("insumo_id", insumoID.String()).
		Str("tipo", tipo).
		Str("cantidad", delta.StringFixed(2)).
		Msg("stock ajustado")

	return &dto.AjusteStockResponse{
		Mensaje:    "Stock actualizado correctamente",
		NuevoStock: nuevoStock,
	}, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movimientos, total, err := s.repo.ListMovimientos(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		data = append(data, *movimientoToResponse(&movimientos[i]))
	}
	return &dto.MovimientoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *inventarioService) AlertasStock(ctx context.Context) ([]dto.InsumoResponse, error) {
	insumos, err := s.repo.ListBajoStock(ctx, 50)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InsumoResponse, 0, len(insumos))
	for i := range insumos {
		out = append(out, *insumoToResponse(&insumos[i]))
	}
	return out, nil
}

func (s *inventarioService) DescontarStockTx(tx *gorm.DB, insumoID uuid.UUID, delta decimal.Decimal) error {
	return s.repo.AjustarStockTx(tx, insumoID, delta)
}

func (s *inventarioService) RegistrarMovimientoTx(tx *gorm.DB, mov *model.MovimientoInventario) error {
	return s.repo.CreateMovimientoTx(tx, mov)
}

func insumoToResponse(i *model.Insumo) *dto.InsumoResponse {
	return &dto.InsumoResponse{
		ID:            i.ID.String(),
		Nombre:        i.Nombre,
		UnidadMedida:  i.UnidadMedida,
		StockActual:   i.StockActual,
		StockMinimo:   i.StockMinimo,
		CostoUnitario: i.CostoUnitario,
		Tipo:          i.Tipo,
	}
}

func movimientoToResponse(m *model.MovimientoInventario) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:        m.ID.String(),
		InsumoID:  m.InsumoID.String(),
		UsuarioID: m.UsuarioID.String(),
		Cantidad:  m.Cantidad,
		Tipo:      m.Tipo,
		Motivo:    m.Motivo,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.Insumo != nil {
		resp.Insumo = m.Insumo.Nombre
	}
	if m.VentaID != nil {
		v := m.VentaID.String()
		resp.VentaID = &v
	}
	return resp
}
