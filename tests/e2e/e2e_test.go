//go:build integration

package e2e

// End-to-end tests with real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - venta completa: login → abrir caja → crear insumo/producto → vender → stock descontado
//   - números de ticket secuenciales por día
//   - anulación restituye stock con movimiento de reversión
//   - cierre de caja: arqueo exacto y faltante

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/config"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/infra"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/router"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pos_test"),
		tcPostgres.WithUsername("pos"),
		tcPostgres.WithPassword("pos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		BusinessName:       "Cafetería E2E",
		Currency:           "Bs",
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (id, nombre, email, password_hash, rol, activo, es_maestro, created_at)
		VALUES (gen_random_uuid(), 'Admin E2E', 'admin@e2e.test', ?, 'ADMINISTRADOR', true, true, NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	r := router.New(cfg, db, rdb, mailer, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "admin@e2e.test", "password": "e2e-password"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

// crearInsumo registra un insumo y devuelve su ID.
func crearInsumo(t *testing.T, env *testEnv, nombre string, stock float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/inventario/insumos",
		jsonBody(t, map[string]any{
			"nombre":         nombre,
			"unidad_medida":  "g",
			"stock_actual":   stock,
			"stock_minimo":   5,
			"costo_unitario": 0.05,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var insumo struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &insumo)
	return insumo.ID
}

// crearProducto registra un producto con una línea de receta y devuelve su ID.
func crearProducto(t *testing.T, env *testEnv, nombre string, precio float64, insumoID string, cantidad float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"nombre":           nombre,
			"precio":           precio,
			"costo_produccion": 2.0,
			"receta": []map[string]any{
				{"insumo_id": insumoID, "cantidad_requerida": cantidad},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func abrirCaja(t *testing.T, env *testEnv, monto float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_apertura": monto}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sesion struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sesion)
	return sesion.ID
}

func vender(t *testing.T, env *testEnv, productoID string, cantidad int, metodo string) (string, string) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": metodo,
			"detalles": []map[string]any{
				{"producto_id": productoID, "cantidad": cantidad},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta struct {
		ID           string `json:"id"`
		NumeroTicket string `json:"numero_ticket"`
	}
	decodeJSON(t, resp, &venta)
	return venta.ID, venta.NumeroTicket
}

func stockDe(t *testing.T, env *testEnv, insumoID string) float64 {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/inventario/insumos/"+insumoID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var insumo struct {
		StockActual float64 `json:"stock_actual,string"`
	}
	decodeJSON(t, resp, &insumo)
	return insumo.StockActual
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_VentaCompletaDescuentaStock(t *testing.T) {
	env := setupTestEnv(t)

	insumoID := crearInsumo(t, env, "Café molido", 100)
	productoID := crearProducto(t, env, "Espresso", 10.50, insumoID, 18)
	abrirCaja(t, env, 100)

	// Venta de 2 unidades consume 36 g
	_, ticket := vender(t, env, productoID, 2, "EFECTIVO")
	assert.Equal(t, "0001", ticket)
	assert.InDelta(t, 64.0, stockDe(t, env, insumoID), 0.001)

	// Segunda venta del día toma el siguiente número
	_, ticket2 := vender(t, env, productoID, 1, "EFECTIVO")
	assert.Equal(t, "0002", ticket2)
}

func TestE2E_AnularVentaRestituyeStock(t *testing.T) {
	env := setupTestEnv(t)

	insumoID := crearInsumo(t, env, "Leche", 50)
	productoID := crearProducto(t, env, "Capuchino", 15.0, insumoID, 10)
	abrirCaja(t, env, 100)

	ventaID, _ := vender(t, env, productoID, 3, "QR")
	assert.InDelta(t, 20.0, stockDe(t, env, insumoID), 0.001)

	anularResp := do(t, env.server, "DELETE", "/v1/ventas/"+ventaID,
		jsonBody(t, map[string]any{"motivo": "Pedido equivocado"}), env.token)
	require.Equal(t, http.StatusOK, anularResp.StatusCode)
	assert.InDelta(t, 50.0, stockDe(t, env, insumoID), 0.001)

	// Una segunda anulación no debe volver a restituir
	reResp := do(t, env.server, "DELETE", "/v1/ventas/"+ventaID,
		jsonBody(t, map[string]any{"motivo": "duplicado"}), env.token)
	assert.Equal(t, http.StatusBadRequest, reResp.StatusCode)
	assert.InDelta(t, 50.0, stockDe(t, env, insumoID), 0.001)

	// El ledger tiene consumo y reversión
	movResp := do(t, env.server, "GET", "/v1/inventario/movimientos?insumo_id="+insumoID, nil, env.token)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movimientos struct {
		Data []struct {
			Tipo string `json:"tipo"`
		} `json:"data"`
	}
	decodeJSON(t, movResp, &movimientos)
	tipos := map[string]int{}
	for _, m := range movimientos.Data {
		tipos[m.Tipo]++
	}
	assert.Equal(t, 1, tipos["VENTA_CONSUMO"])
	assert.Equal(t, 1, tipos["REVERSION_ANULACION"])
}

func TestE2E_CierreDeCajaConArqueo(t *testing.T) {
	env := setupTestEnv(t)

	insumoID := crearInsumo(t, env, "Azúcar", 500)
	productoID := crearProducto(t, env, "Té", 10.0, insumoID, 5)
	abrirCaja(t, env, 100)

	vender(t, env, productoID, 1, "EFECTIVO") // 10.00
	vender(t, env, productoID, 1, "EFECTIVO") // 10.00
	vender(t, env, productoID, 1, "TARJETA")  // no cuenta para el efectivo

	// Esperado: 100 + 10 + 10 = 120
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_cierre": 120.0}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		Resultado string `json:"resultado"`
		Analisis  struct {
			EfectivoEsperado string `json:"efectivo_esperado"`
			Diferencia       string `json:"diferencia"`
		} `json:"analisis"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "CUADRE_EXACTO", cierre.Resultado)
	assert.Equal(t, "120", cierre.Analisis.EfectivoEsperado)

	// Una sesión cerrada no admite más ventas
	resp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "EFECTIVO",
			"detalles":    []map[string]any{{"producto_id": productoID, "cantidad": 1}},
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestE2E_FaltanteRegistraDiferencia(t *testing.T) {
	env := setupTestEnv(t)

	insumoID := crearInsumo(t, env, "Harina", 1000)
	productoID := crearProducto(t, env, "Empanada", 25.0, insumoID, 80)
	abrirCaja(t, env, 150)

	vender(t, env, productoID, 2, "EFECTIVO") // 50.00 → esperado 200

	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_cierre": 190.0, "observaciones": "cierre de turno"}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		Resultado string `json:"resultado"`
		Analisis  struct {
			Diferencia string `json:"diferencia"`
		} `json:"analisis"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "FALTANTE", cierre.Resultado)
	assert.Equal(t, "-10", cierre.Analisis.Diferencia)
}

func TestE2E_MenuPublicoSinToken(t *testing.T) {
	env := setupTestEnv(t)

	insumoID := crearInsumo(t, env, "Cacao", 200)
	crearProducto(t, env, "Chocolate caliente", 18.0, insumoID, 30)

	resp := do(t, env.server, "GET", "/v1/menu", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var menu []struct {
		Nombre string `json:"nombre"`
	}
	decodeJSON(t, resp, &menu)
	require.Len(t, menu, 1)
	assert.Equal(t, "Chocolate caliente", menu[0].Nombre)
}

func TestE2E_CajeroNoPuedeAnular(t *testing.T) {
	env := setupTestEnv(t)

	// Crear cajero y loguearse con él
	resp := do(t, env.server, "POST", "/v1/usuarios",
		jsonBody(t, map[string]any{
			"nombre":   "Cajero E2E",
			"email":    "cajero@e2e.test",
			"password": "cajero-pass-123",
			"rol":      "CAJERO",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "cajero@e2e.test", "password": "cajero-pass-123"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &login)

	anularResp := do(t, env.server, "DELETE", "/v1/ventas/550e8400-e29b-41d4-a716-446655440000",
		jsonBody(t, map[string]any{"motivo": "sin permiso"}), login.AccessToken)
	assert.Equal(t, http.StatusForbidden, anularResp.StatusCode)
}
