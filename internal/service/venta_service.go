package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/infra"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	ProcesarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, usuarioID, ventaID uuid.UUID, motivo string) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	inventario   InventarioService
	caja         CajaService
	productoRepo repository.ProductoRepository
	dispatcher   *worker.Dispatcher

	businessName string
	currency     string
	pdfPath      string
}

func NewVentaService(
	repo repository.VentaRepository,
	inventario InventarioService,
	caja CajaService,
	productoRepo repository.ProductoRepository,
	dispatcher *worker.Dispatcher,
	businessName, currency, pdfPath string,
) VentaService {
	return &ventaService{
		repo:         repo,
		inventario:   inventario,
		caja:         caja,
		productoRepo: productoRepo,
		dispatcher:   dispatcher,
		businessName: businessName,
		currency:     currency,
		pdfPath:      pdfPath,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ProcesarVenta registers a sale atomically:
//
//  1. the cashier must have an open session
//  2. ticket number drawn from the per-day counter
//  3. unit prices snapshotted from the current catalog
//  4. recipe-driven stock deduction, one signed movement per insumo
//
// All writes happen in a single transaction; any failure rolls everything
// back, including the ticket number draw.
func (s *ventaService) ProcesarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error) {
	for _, det := range req.Detalles {
		if det.Cantidad < 1 {
			return nil, apierror.Validation("la cantidad de cada detalle debe ser al menos 1")
		}
	}

	var venta model.Venta
	nombres := make(map[uuid.UUID]string)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Resolved inside the transaction: a session closed after the request
		// arrived rejects the sale instead of committing into a closed session.
		sesion, err := s.caja.SesionAbierta(ctx, usuarioID)
		if err != nil {
			return err
		}

		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		numeroTicket := fmt.Sprintf("%04d", ticketNum)

		type lineaConsumo struct {
			insumoID uuid.UUID
			delta    decimal.Decimal
			motivo   string
		}

		total := decimal.Zero
		var detalles []model.DetalleVenta
		var consumos []lineaConsumo

		for _, det := range req.Detalles {
			productoID, err := uuid.Parse(det.ProductoID)
			if err != nil {
				return apierror.Validation("producto_id inválido")
			}
			producto, err := s.productoRepo.FindByIDConRecetaTx(tx, productoID)
			if err != nil {
				return apierror.NotFound(fmt.Sprintf("producto %s no encontrado", det.ProductoID))
			}
			if !producto.Activo {
				return apierror.Precondition(fmt.Sprintf("el producto %s está inactivo", producto.Nombre))
			}
			nombres[productoID] = producto.Nombre

			// Price snapshot: later catalog edits never touch this sale
			subtotal := producto.Precio.Mul(decimal.NewFromInt(int64(det.Cantidad)))
			total = total.Add(subtotal)
			detalles = append(detalles, model.DetalleVenta{
				ProductoID:     productoID,
				Cantidad:       det.Cantidad,
				PrecioUnitario: producto.Precio,
				Subtotal:       subtotal,
			})

			// One consumption per recipe line: cantidad_requerida × unidades.
			// Products without a recipe simply consume nothing.
			for _, receta := range producto.Recetas {
				delta := receta.CantidadRequerida.Mul(decimal.NewFromInt(int64(det.Cantidad))).Neg()
				consumos = append(consumos, lineaConsumo{
					insumoID: receta.InsumoID,
					delta:    delta,
					motivo:   fmt.Sprintf("Ticket %s - %s", numeroTicket, producto.Nombre),
				})
			}
		}

		venta = model.Venta{
			UsuarioID:    usuarioID,
			SesionCajaID: sesion.ID,
			NumeroTicket: numeroTicket,
			MontoTotal:   total,
			MetodoPago:   req.MetodoPago,
			Estado:       "COMPLETADA",
			Detalles:     detalles,
		}
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, c := range consumos {
			if err := s.inventario.DescontarStockTx(tx, c.insumoID, c.delta); err != nil {
				return fmt.Errorf("descontando stock del insumo %s: %w", c.insumoID, err)
			}
			ventaID := venta.ID
			mov := &model.MovimientoInventario{
				InsumoID:  c.insumoID,
				UsuarioID: usuarioID,
				VentaID:   &ventaID,
				Cantidad:  c.delta,
				Tipo:      model.MovVentaConsumo,
				Motivo:    c.motivo,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero_ticket", venta.NumeroTicket).
		Str("monto_total", venta.MontoTotal.StringFixed(2)).
		Str("metodo_pago", venta.MetodoPago).
		Msg("venta procesada")

	// Ticket by email — best effort, never blocks nor fails the sale
	if req.ClienteEmail != nil && *req.ClienteEmail != "" && s.dispatcher != nil {
		s.enviarTicket(ctx, &venta, nombres, *req.ClienteEmail)
	}

	resp := ventaToResponse(&venta)
	for i := range resp.Detalles {
		if pid, err := uuid.Parse(resp.Detalles[i].ProductoID); err == nil {
			resp.Detalles[i].Producto = nombres[pid]
		}
	}
	return resp, nil
}

// AnularVenta voids a completed sale: compensating REVERSION_ANULACION
// movements restore the stock consumed per the product's current recipe, the
// venta flips to ANULADA and its amount stops counting toward the session.
// The original sale rows are never modified or deleted.
func (s *ventaService) AnularVenta(ctx context.Context, usuarioID, ventaID uuid.UUID, motivo string) (*dto.VentaResponse, error) {
	var venta *model.Venta

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDConDetalles(ctx, ventaID)
		if err != nil {
			return apierror.NotFound("venta no encontrada")
		}
		if venta.Estado == "ANULADA" {
			return apierror.Precondition("la venta ya está anulada")
		}

		// Claim the transition first. The guarded update takes the row lock,
		// so a concurrent void blocks here and then sees zero rows: only one
		// caller ever gets to write compensating movements.
		if err := s.repo.UpdateEstadoTx(tx, ventaID, "COMPLETADA", "ANULADA"); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Precondition("la venta ya está anulada")
			}
			return err
		}

		for _, det := range venta.Detalles {
			if det.Producto == nil {
				continue
			}
			for _, receta := range det.Producto.Recetas {
				delta := receta.CantidadRequerida.Mul(decimal.NewFromInt(int64(det.Cantidad)))
				if err := s.inventario.DescontarStockTx(tx, receta.InsumoID, delta); err != nil {
					return fmt.Errorf("revirtiendo stock del insumo %s: %w", receta.InsumoID, err)
				}
				ref := venta.ID
				mov := &model.MovimientoInventario{
					InsumoID:  receta.InsumoID,
					UsuarioID: usuarioID,
					VentaID:   &ref,
					Cantidad:  delta,
					Tipo:      model.MovReversionAnulacion,
					Motivo:    fmt.Sprintf("Anulación ticket %s - %s", venta.NumeroTicket, motivo),
				}
				if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	venta.Estado = "ANULADA"

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero_ticket", venta.NumeroTicket).
		Str("motivo", motivo).
		Msg("venta anulada")

	return ventaToResponse(venta), nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByIDConDetalles(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ListarVentas returns a paginated list of sales, filtered by date and estado.
// Default filter: today, any estado.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// enviarTicket renders the PDF and enqueues the email job. Failures are
// logged and swallowed, the sale is already committed.
func (s *ventaService) enviarTicket(ctx context.Context, venta *model.Venta, nombres map[uuid.UUID]string, toEmail string) {
	// Attach product names for the PDF item rows
	conNombres := *venta
	conNombres.Detalles = make([]model.DetalleVenta, len(venta.Detalles))
	copy(conNombres.Detalles, venta.Detalles)
	for i := range conNombres.Detalles {
		nombre := nombres[conNombres.Detalles[i].ProductoID]
		conNombres.Detalles[i].Producto = &model.Producto{Nombre: nombre}
	}

	pdfPath, err := infra.GenerateTicketPDF(&conNombres, s.businessName, s.currency, s.pdfPath)
	if err != nil {
		log.Error().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo generar el PDF del ticket")
		return
	}

	payload := worker.EmailJobPayload{
		ToEmail: toEmail,
		Subject: fmt.Sprintf("%s - Ticket %s", s.businessName, venta.NumeroTicket),
		Body:    fmt.Sprintf("Adjuntamos su comprobante de venta por %s %s. ¡Gracias por su compra!", venta.MontoTotal.StringFixed(2), s.currency),
		PDFPath: pdfPath,
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo encolar el email del ticket")
	}
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, det := range v.Detalles {
		nombre := ""
		if det.Producto != nil {
			nombre = det.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleVentaResponse{
			Producto:       nombre,
			ProductoID:     det.ProductoID.String(),
			Cantidad:       det.Cantidad,
			PrecioUnitario: det.PrecioUnitario,
			Subtotal:       det.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		SesionCajaID: v.SesionCajaID.String(),
		UsuarioID:    v.UsuarioID.String(),
		Detalles:     detalles,
		MontoTotal:   v.MontoTotal,
		MetodoPago:   v.MetodoPago,
		Estado:       v.Estado,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}
