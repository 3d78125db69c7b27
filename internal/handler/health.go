package handler

import (
	"context"
	"net/http"
	"time"

	"roadwatch/internal/detector"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OracleHealthChecker probes the external detection service.
type OracleHealthChecker interface {
	HealthCheck(ctx context.Context) (*detector.HealthResponse, error)
}

type HealthHandler interface {
	Health(c *gin.Context)
}

type healthHandler struct {
	oracle OracleHealthChecker
	log    *zap.Logger
}

func NewHealthHandler(oracle OracleHealthChecker, log *zap.Logger) HealthHandler {
	return &healthHandler{oracle: oracle, log: log}
}

// Health reports service liveness and whether the detection oracle is
// reachable. An unreachable oracle does not fail the check: submissions
// keep working through the simulator.
func (h *healthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	oracleStatus := gin.H{"reachable": false}
	if resp, err := h.oracle.HealthCheck(ctx); err == nil {
		oracleStatus = gin.H{
			"reachable":    true,
			"status":       resp.Status,
			"model_loaded": resp.ModelLoaded,
			"model_type":   resp.ModelType,
		}
	} else {
		h.log.Debug("Oracle health check failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"oracle": oracleStatus,
	})
}
