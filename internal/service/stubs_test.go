package service_test

// In-memory repository stubs. Transactions degrade to direct calls because
// the services run runTx with a nil DB in unit-test mode.

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── VentaRepository ───────────────────────────────────────────────────────────

type stubVentaRepo struct {
	mu        sync.Mutex
	ventas    map[uuid.UUID]*model.Venta
	ticketSeq int
	productos *stubProductoRepo

	// onFindConDetalles, when set, runs after a successful load. Lets tests
	// interleave two voids the way concurrent requests would.
	onFindConDetalles func()
}

func newStubVentaRepo(productos *stubProductoRepo) *stubVentaRepo {
	return &stubVentaRepo{
		ventas:    make(map[uuid.UUID]*model.Venta),
		productos: productos,
	}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Detalles {
		if v.Detalles[i].ID == uuid.Nil {
			v.Detalles[i].ID = uuid.New()
		}
		v.Detalles[i].VentaID = v.ID
	}
	v.CreatedAt = time.Now()
	r.mu.Lock()
	r.ventas[v.ID] = v
	r.mu.Unlock()
	return nil
}

func (r *stubVentaRepo) FindByIDConDetalles(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	v, ok := r.ventas[id]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	// Attach the current product (with its current recipe), as the Preload does
	copia := *v
	copia.Detalles = make([]model.DetalleVenta, len(v.Detalles))
	copy(copia.Detalles, v.Detalles)
	if r.productos != nil {
		for i := range copia.Detalles {
			if p, ok := r.productos.productos[copia.Detalles[i].ProductoID]; ok {
				copia.Detalles[i].Producto = p
			}
		}
	}
	r.mu.Unlock()
	if r.onFindConDetalles != nil {
		r.onFindConDetalles()
	}
	return &copia, nil
}

// UpdateEstadoTx mirrors the guarded UPDATE: the transition only happens when
// the row still holds `desde`, so concurrent voids race for a single claim.
func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, desde, hacia string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok || v.Estado != desde {
		return gorm.ErrRecordNotFound
	}
	v.Estado = hacia
	return nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── CajaRepository ────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	mu       sync.Mutex
	sesiones map[uuid.UUID]*model.SesionCaja
	ventas   map[uuid.UUID][]model.Venta // sesionID → ventas

	// onFindAbierta, when set, runs after the open-session scan. Lets tests
	// interleave two callers the way concurrent requests would.
	onFindAbierta func()
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{
		sesiones: make(map[uuid.UUID]*model.SesionCaja),
		ventas:   make(map[uuid.UUID][]model.Venta),
	}
}

// CreateSesion enforces the partial unique index: inserting a second ABIERTA
// session for the same user fails with gorm.ErrDuplicatedKey.
func (r *stubCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Estado == "ABIERTA" {
		for _, existing := range r.sesiones {
			if existing.UsuarioID == s.UsuarioID && existing.Estado == "ABIERTA" {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesionAbierta(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	r.mu.Lock()
	var abierta *model.SesionCaja
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == "ABIERTA" {
			abierta = s
			break
		}
	}
	r.mu.Unlock()
	if r.onFindAbierta != nil {
		r.onFindAbierta()
	}
	if abierta == nil {
		return nil, nil
	}
	return abierta, nil
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCajaRepo) UpdateSesion(_ context.Context, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) ListVentasSesion(_ context.Context, sesionID uuid.UUID) ([]model.Venta, error) {
	return r.ventas[sesionID], nil
}

func (r *stubCajaRepo) ListSesiones(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	out := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) addVenta(sesionID uuid.UUID, metodo, estado string, monto decimal.Decimal) {
	r.ventas[sesionID] = append(r.ventas[sesionID], model.Venta{
		ID:           uuid.New(),
		SesionCajaID: sesionID,
		MetodoPago:   metodo,
		Estado:       estado,
		MontoTotal:   monto,
	})
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── InsumoRepository ──────────────────────────────────────────────────────────

type stubInsumoRepo struct {
	insumos     map[uuid.UUID]*model.Insumo
	movimientos []model.MovimientoInventario
}

func newStubInsumoRepo() *stubInsumoRepo {
	return &stubInsumoRepo{insumos: make(map[uuid.UUID]*model.Insumo)}
}

func (r *stubInsumoRepo) Create(_ context.Context, i *model.Insumo) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.insumos[i.ID] = i
	return nil
}

func (r *stubInsumoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Insumo, error) {
	i, ok := r.insumos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubInsumoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Insumo, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubInsumoRepo) List(_ context.Context) ([]model.Insumo, error) {
	out := make([]model.Insumo, 0, len(r.insumos))
	for _, i := range r.insumos {
		out = append(out, *i)
	}
	return out, nil
}

func (r *stubInsumoRepo) Update(_ context.Context, i *model.Insumo) error {
	r.insumos[i.ID] = i
	return nil
}

func (r *stubInsumoRepo) ListBajoStock(_ context.Context, _ int) ([]model.Insumo, error) {
	var out []model.Insumo
	for _, i := range r.insumos {
		if i.StockActual.LessThanOrEqual(i.StockMinimo) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *stubInsumoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	i, ok := r.insumos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.StockActual = i.StockActual.Add(delta)
	return nil
}

func (r *stubInsumoRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoInventario) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubInsumoRepo) ListMovimientos(_ context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.InsumoID != "" && m.InsumoID.String() != filter.InsumoID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubInsumoRepo) DB() *gorm.DB { return nil }

// movimientosDe returns the movements recorded for one insumo, oldest first.
func (r *stubInsumoRepo) movimientosDe(insumoID uuid.UUID) []model.MovimientoInventario {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if m.InsumoID == insumoID {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.InsumoRepository = (*stubInsumoRepo)(nil)

// ── ProductoRepository ────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDConReceta(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(ctx, id)
}

func (r *stubProductoRepo) FindByIDConRecetaTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) List(_ context.Context, soloActivos bool) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if soloActivos && !p.Activo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	if _, ok := r.productos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) ReplaceRecetaTx(_ *gorm.DB, productoID uuid.UUID, lineas []model.Receta) error {
	p, ok := r.productos[productoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Recetas = lineas
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── CategoriaRepository ───────────────────────────────────────────────────────

type stubCategoriaRepo struct {
	categorias map[int]*model.Categoria
	seq        int
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[int]*model.Categoria)}
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	for _, existing := range r.categorias {
		if existing.Nombre == c.Nombre {
			return errors.New("duplicate key")
		}
	}
	r.seq++
	c.ID = r.seq
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id int) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoriaRepo) List(_ context.Context) ([]model.Categoria, error) {
	out := make([]model.Categoria, 0, len(r.categorias))
	for _, c := range r.categorias {
		out = append(out, *c)
	}
	return out, nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

// ── UsuarioRepository ─────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, existing := range r.usuarios {
		if existing.Email == u.Email {
			return errors.New("duplicate key")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if !incluirInactivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedInsumo(repo *stubInsumoRepo, nombre string, stock float64) *model.Insumo {
	insumo := &model.Insumo{
		ID:           uuid.New(),
		Nombre:       nombre,
		UnidadMedida: "unidad",
		StockActual:  decimal.NewFromFloat(stock),
		Tipo:         "BASE",
	}
	repo.insumos[insumo.ID] = insumo
	return insumo
}

func seedProducto(repo *stubProductoRepo, nombre string, precio float64, receta ...model.Receta) *model.Producto {
	p := &model.Producto{
		ID:      uuid.New(),
		Nombre:  nombre,
		Precio:  decimal.NewFromFloat(precio),
		Activo:  true,
		Recetas: receta,
	}
	for i := range p.Recetas {
		p.Recetas[i].ProductoID = p.ID
	}
	repo.productos[p.ID] = p
	return p
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// assertDec fails the test when two decimals differ in value.
func assertDec(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Fatalf("expected %s, got %s", expected, actual)
	}
}
