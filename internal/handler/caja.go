package handler

import (
	"net/http"
	"strconv"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/middleware"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// AbrirCaja godoc
// @Summary      Abrir sesión de caja
// @Description  Abre una sesión de caja para el usuario autenticado con el monto de apertura declarado.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCajaRequest true "Monto de apertura"
// @Success      201  {object} dto.SesionCajaResponse
// @Failure      409  {object} apierror.APIError "Ya existe una sesión abierta"
// @Router       /v1/caja/abrir [post]
func (h *CajaHandler) AbrirCaja(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CerrarCaja godoc
// @Summary      Cerrar sesión de caja
// @Description  Cierra la sesión abierta del usuario, calcula el arqueo (esperado vs contado) y registra la diferencia.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarCajaRequest true "Monto contado al cierre"
// @Success      200  {object} dto.CierreCajaResponse
// @Failure      400  {object} apierror.APIError "No hay sesión abierta"
// @Router       /v1/caja/cerrar [post]
func (h *CajaHandler) CerrarCaja(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SesionActiva retorna la sesión abierta del usuario autenticado, o 404 si no hay.
func (h *CajaHandler) SesionActiva(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.SesionActiva(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerResumen godoc
// @Summary      Resumen de sesión
// @Description  Totales de la sesión: ventas por método de pago, efectivo esperado y cantidad de tickets.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la sesión"
// @Success      200 {object} dto.ResumenSesionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/{id}/resumen [get]
func (h *CajaHandler) ObtenerResumen(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerResumen(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ListarSesiones(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sesiones, total, err := h.svc.ListSesiones(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  sesiones,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
