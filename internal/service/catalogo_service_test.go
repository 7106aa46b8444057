package service_test

import (
	"context"
	"testing"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogoFixture() (service.CatalogoService, *stubProductoRepo, *stubInsumoRepo) {
	productoRepo := newStubProductoRepo()
	categoriaRepo := newStubCategoriaRepo()
	insumoRepo := newStubInsumoRepo()
	svc := service.NewCatalogoService(productoRepo, categoriaRepo, insumoRepo, nil)
	return svc, productoRepo, insumoRepo
}

func TestCrearProducto_ConReceta(t *testing.T) {
	svc, _, insumoRepo := newCatalogoFixture()
	leche := seedInsumo(insumoRepo, "Leche", 10)

	resp, err := svc.CrearProducto(context.Background(), dto.CrearProductoRequest{
		Nombre: "Capuchino",
		Precio: dec(20),
		Receta: []dto.RecetaLineaRequest{
			{InsumoID: leche.ID.String(), CantidadRequerida: dec(2)},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Activo)
	require.Len(t, resp.Receta, 1)
	assertDec(t, dec(2), resp.Receta[0].CantidadRequerida)
}

func TestCrearProducto_InsumoInexistenteFalla(t *testing.T) {
	svc, productoRepo, _ := newCatalogoFixture()

	_, err := svc.CrearProducto(context.Background(), dto.CrearProductoRequest{
		Nombre: "Capuchino",
		Precio: dec(20),
		Receta: []dto.RecetaLineaRequest{
			{InsumoID: uuid.NewString(), CantidadRequerida: dec(2)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	assert.Empty(t, productoRepo.productos)
}

func TestCrearProducto_CantidadRequeridaNoPositiva(t *testing.T) {
	svc, _, insumoRepo := newCatalogoFixture()
	leche := seedInsumo(insumoRepo, "Leche", 10)

	_, err := svc.CrearProducto(context.Background(), dto.CrearProductoRequest{
		Nombre: "Capuchino",
		Precio: dec(20),
		Receta: []dto.RecetaLineaRequest{
			{InsumoID: leche.ID.String(), CantidadRequerida: dec(0)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestActualizarProducto_ReemplazaReceta(t *testing.T) {
	svc, productoRepo, insumoRepo := newCatalogoFixture()
	leche := seedInsumo(insumoRepo, "Leche", 10)
	cafe := seedInsumo(insumoRepo, "Café molido", 10)
	p := seedProducto(productoRepo, "Capuchino", 20)

	_, err := svc.ActualizarProducto(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Receta: []dto.RecetaLineaRequest{
			{InsumoID: leche.ID.String(), CantidadRequerida: dec(2)},
			{InsumoID: cafe.ID.String(), CantidadRequerida: dec(1)},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Recetas, 2)

	// A second update replaces the full recipe, it never appends
	_, err = svc.ActualizarProducto(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Receta: []dto.RecetaLineaRequest{
			{InsumoID: cafe.ID.String(), CantidadRequerida: dec(3)},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Recetas, 1)
	assert.Equal(t, cafe.ID, p.Recetas[0].InsumoID)
	assertDec(t, dec(3), p.Recetas[0].CantidadRequerida)
}

func TestActualizarProducto_PrecioSinTocarReceta(t *testing.T) {
	svc, productoRepo, insumoRepo := newCatalogoFixture()
	leche := seedInsumo(insumoRepo, "Leche", 10)
	p := seedProducto(productoRepo, "Capuchino", 20)
	_, err := svc.ActualizarProducto(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Receta: []dto.RecetaLineaRequest{{InsumoID: leche.ID.String(), CantidadRequerida: dec(2)}},
	})
	require.NoError(t, err)

	nuevoPrecio := dec(25)
	_, err = svc.ActualizarProducto(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Precio: &nuevoPrecio,
	})
	require.NoError(t, err)

	assertDec(t, dec(25), p.Precio)
	assert.Len(t, p.Recetas, 1)
}

func TestEliminarProducto_EsSoftDelete(t *testing.T) {
	svc, productoRepo, _ := newCatalogoFixture()
	p := seedProducto(productoRepo, "Descontinuado", 10)

	require.NoError(t, svc.EliminarProducto(context.Background(), p.ID))

	// Row survives for historical sales, just deactivated
	assert.False(t, p.Activo)
	assert.Contains(t, productoRepo.productos, p.ID)
}

func TestObtenerMenu_SoloActivos(t *testing.T) {
	svc, productoRepo, _ := newCatalogoFixture()
	seedProducto(productoRepo, "Café", 15)
	inactivo := seedProducto(productoRepo, "Viejo", 10)
	inactivo.Activo = false

	menu, err := svc.ObtenerMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Café", menu[0].Nombre)
}

func TestCategorias(t *testing.T) {
	svc, _, _ := newCatalogoFixture()

	creada, err := svc.CrearCategoria(context.Background(), dto.CrearCategoriaRequest{Nombre: "Bebidas calientes"})
	require.NoError(t, err)
	assert.NotZero(t, creada.ID)

	_, err = svc.CrearCategoria(context.Background(), dto.CrearCategoriaRequest{Nombre: "Bebidas calientes"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	lista, err := svc.ListarCategorias(context.Background())
	require.NoError(t, err)
	assert.Len(t, lista, 1)
}
