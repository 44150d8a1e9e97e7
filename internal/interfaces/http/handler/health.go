package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/dms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. db may be nil, in which case
// readiness only reflects that the process is up.
func NewHealthHandler(name, version string, db Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: newBase(log),
		name:        name,
		version:     version,
		db:          db,
		startTime:   time.Now(),
	}
}

// HealthResponse is the body of both checks
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database,omitempty"`
}

func (h *HealthHandler) info(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, h.info("healthy"))
}

// Ready GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := h.info("ready")
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			resp.Status = "not_ready"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp,
				Error: &dto.ErrorInfo{Code: dto.ErrCodeTransient, Message: "Database unreachable"}})
			return
		}
		resp.Database = "ok"
	}
	h.Success(c, resp)
}
