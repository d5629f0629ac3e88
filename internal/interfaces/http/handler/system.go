package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
)

// StorePinger reports unreachable stores by name.
type StorePinger interface {
	PingAll(ctx context.Context) map[string]error
	Len() int
}

// SystemHandler serves liveness and version information.
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	stores    StorePinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. stores may be nil.
func NewSystemHandler(base BaseHandler, name, version string, stores StorePinger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: base,
		name:        name,
		version:     version,
		stores:      stores,
		startTime:   time.Now(),
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	GoVersion  string            `json:"goVersion"`
	Uptime     string            `json:"uptime"`
	OpenStores int               `json:"openStores"`
	Failures   map[string]string `json:"failures,omitempty"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Pings every open store. Any failure turns the answer into 503
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if h.stores != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp.OpenStores = h.stores.Len()
		if failures := h.stores.PingAll(ctx); len(failures) > 0 {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			if !h.Production {
				resp.Failures = make(map[string]string, len(failures))
				for name, err := range failures {
					resp.Failures[name] = err.Error()
				}
			}
		}
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping godoc
// @ID           getSystemPing
// @Summary      Ping
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
