package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/apierror"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Dashboard gerencial
// @Description  Resumen del día, ventas por método de pago, top productos, alertas de stock y serie semanal.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarVentasCSV descarga las ventas de un día en CSV separado por punto y coma.
func (h *ReportesHandler) ExportarVentasCSV(c *gin.Context) {
	fecha := c.DefaultQuery("fecha", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha inválida, formato esperado YYYY-MM-DD"))
		return
	}
	data, err := h.svc.ExportarVentasCSV(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ventas_%s.csv"`, fecha))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
