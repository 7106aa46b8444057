package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	menuCacheKey = "cache:menu"
	menuCacheTTL = 60 * time.Second
)

type CatalogoService interface {
	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ListarProductos(ctx context.Context, soloActivos bool) ([]dto.ProductoResponse, error)
	EliminarProducto(ctx context.Context, id uuid.UUID) error

	CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)

	// ObtenerMenu is the public read of active products, cached in Redis.
	ObtenerMenu(ctx context.Context) ([]dto.MenuItemResponse, error)
}

type catalogoService struct {
	productoRepo  repository.ProductoRepository
	categoriaRepo repository.CategoriaRepository
	insumoRepo    repository.InsumoRepository
	rdb           *redis.Client
}

func NewCatalogoService(
	productoRepo repository.ProductoRepository,
	categoriaRepo repository.CategoriaRepository,
	insumoRepo repository.InsumoRepository,
	rdb *redis.Client,
) CatalogoService {
	return &catalogoService{
		productoRepo:  productoRepo,
		categoriaRepo: categoriaRepo,
		insumoRepo:    insumoRepo,
		rdb:           rdb,
	}
}

func (s *catalogoService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	lineas, err := s.resolverReceta(ctx, req.Receta)
	if err != nil {
		return nil, err
	}

	producto := &model.Producto{
		Nombre:          req.Nombre,
		Precio:          req.Precio,
		CostoProduccion: req.CostoProduccion,
		CategoriaID:     req.CategoriaID,
		ImagenURL:       req.ImagenURL,
		Activo:          true,
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.CreateTx(tx, producto); err != nil {
			return err
		}
		if len(lineas) == 0 {
			return nil
		}
		for i := range lineas {
			lineas[i].ProductoID = producto.ID
		}
		return s.productoRepo.ReplaceRecetaTx(tx, producto.ID, lineas)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidateMenu(ctx)
	return s.ObtenerProducto(ctx, producto.ID)
}

func (s *catalogoService) ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("producto no encontrado")
	}

	// Price edits only affect future sales: completed ventas keep their snapshot
	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.Precio != nil {
		producto.Precio = *req.Precio
	}
	if req.CostoProduccion != nil {
		producto.CostoProduccion = *req.CostoProduccion
	}
	if req.CategoriaID != nil {
		producto.CategoriaID = req.CategoriaID
	}
	if req.ImagenURL != nil {
		producto.ImagenURL = req.ImagenURL
	}

	var lineas []model.Receta
	if req.Receta != nil {
		lineas, err = s.resolverReceta(ctx, req.Receta)
		if err != nil {
			return nil, err
		}
		for i := range lineas {
			lineas[i].ProductoID = id
		}
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.UpdateTx(tx, producto); err != nil {
			return err
		}
		if req.Receta != nil {
			return s.productoRepo.ReplaceRecetaTx(tx, id, lineas)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidateMenu(ctx)
	return s.ObtenerProducto(ctx, id)
}

func (s *catalogoService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.productoRepo.FindByIDConReceta(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("producto no encontrado")
	}
	return productoToResponse(producto), nil
}

func (s *catalogoService) ListarProductos(ctx context.Context, soloActivos bool) ([]dto.ProductoResponse, error) {
	productos, err := s.productoRepo.List(ctx, soloActivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

// EliminarProducto deactivates the product. Historical sales keep referencing
// it, so rows are never physically deleted.
func (s *catalogoService) EliminarProducto(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productoRepo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("producto no encontrado")
	}
	if err := s.productoRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateMenu(ctx)
	return nil
}

func (s *catalogoService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	categoria := &model.Categoria{Nombre: req.Nombre}
	if err := s.categoriaRepo.Create(ctx, categoria); err != nil {
		return nil, apierror.Conflict("ya existe una categoría con ese nombre")
	}
	return &dto.CategoriaResponse{ID: categoria.ID, Nombre: categoria.Nombre}, nil
}

func (s *catalogoService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.categoriaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for _, c := range categorias {
		out = append(out, dto.CategoriaResponse{ID: c.ID, Nombre: c.Nombre})
	}
	return out, nil
}

func (s *catalogoService) ObtenerMenu(ctx context.Context) ([]dto.MenuItemResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, menuCacheKey).Result(); err == nil {
			var menu []dto.MenuItemResponse
			if err := json.Unmarshal([]byte(cached), &menu); err == nil {
				return menu, nil
			}
		}
	}

	productos, err := s.productoRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	menu := make([]dto.MenuItemResponse, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		item := dto.MenuItemResponse{
			ID:        p.ID.String(),
			Nombre:    p.Nombre,
			Precio:    p.Precio,
			ImagenURL: p.ImagenURL,
		}
		if p.Categoria != nil {
			item.Categoria = &p.Categoria.Nombre
		}
		menu = append(menu, item)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(menu); err == nil {
			if err := s.rdb.Set(ctx, menuCacheKey, data, menuCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("no se pudo cachear el menú")
			}
		}
	}
	return menu, nil
}

func (s *catalogoService) invalidateMenu(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar el caché del menú")
	}
}

// resolverReceta validates every recipe line against the inventory before any
// write happens.
func (s *catalogoService) resolverReceta(ctx context.Context, receta []dto.RecetaLineaRequest) ([]model.Receta, error) {
	lineas := make([]model.Receta, 0, len(receta))
	for _, linea := range receta {
		insumoID, err := uuid.Parse(linea.InsumoID)
		if err != nil {
			return nil, apierror.Validation("insumo_id inválido en la receta")
		}
		if !linea.CantidadRequerida.IsPositive() {
			return nil, apierror.Validation("cantidad_requerida debe ser positiva")
		}
		if _, err := s.insumoRepo.FindByID(ctx, insumoID); err != nil {
			return nil, apierror.NotFound("insumo de la receta no encontrado")
		}
		lineas = append(lineas, model.Receta{
			InsumoID:          insumoID,
			CantidadRequerida: linea.CantidadRequerida,
		})
	}
	return lineas, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	receta := make([]dto.RecetaLineaResponse, 0, len(p.Recetas))
	for _, r := range p.Recetas {
		linea := dto.RecetaLineaResponse{
			InsumoID:          r.InsumoID.String(),
			CantidadRequerida: r.CantidadRequerida,
		}
		if r.Insumo != nil {
			linea.Insumo = r.Insumo.Nombre
			linea.UnidadMedida = r.Insumo.UnidadMedida
		}
		receta = append(receta, linea)
	}
	resp := &dto.ProductoResponse{
		ID:              p.ID.String(),
		Nombre:          p.Nombre,
		Precio:          p.Precio,
		CostoProduccion: p.CostoProduccion,
		CategoriaID:     p.CategoriaID,
		ImagenURL:       p.ImagenURL,
		Activo:          p.Activo,
		Receta:          receta,
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	return resp
}
