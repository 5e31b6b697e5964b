package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is the bridge release, overridden at build time via -ldflags.
var Version = "dev"

const healthCheckTimeout = 5 * time.Second

// DependencyCheck probes one dependency for the health endpoint.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    []DependencyCheck
}

// NewSystemHandler creates a new SystemHandler with the dependency checks
// the health endpoint reports on
func NewSystemHandler(checks ...DependencyCheck) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// RegisterRoutes mounts the system endpoints
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/info", h.GetSystemInfo)
	rg.GET("/system/ping", h.Ping)
	rg.GET("/system/health", h.Health)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "erplink-bridge",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	h.Success(c, info)
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping checks if the API is responsive
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	h.Success(c, response)
}

// DependencyStatus is one dependency's health verdict
type DependencyStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the health endpoint's body. It is served unwrapped so
// monitoring systems can parse it without the response envelope.
type HealthResponse struct {
	Status       string             `json:"status"` // healthy or degraded
	Uptime       string             `json:"uptime"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// Health reports liveness plus per-dependency status. A failing dependency
// degrades the report to 503; the process itself keeps serving.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}

	for _, check := range h.checks {
		status := DependencyStatus{Name: check.Name, Healthy: true}
		if err := check.Check(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Dependencies = append(resp.Dependencies, status)
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
