package handler

import (
	"net/http"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	rdb    *redis.Client
	mailer *infra.Mailer
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, mailer: mailer}
}

// Check reporta el estado de las dependencias. Responde 503 si la base de
// datos o Redis no contestan; el estado del circuito SMTP es informativo.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "ok"
	}

	checks["smtp_circuit"] = h.mailer.CircuitState()

	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
		"checks": checks,
	})
}
