package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/erplink/bridge/internal/application/sync"
)

// ERPProbeHandler exposes the ERP connectivity probe
type ERPProbeHandler struct {
	BaseHandler
	probe *syncapp.ProbeService
}

// NewERPProbeHandler creates a new ERPProbeHandler
func NewERPProbeHandler(probe *syncapp.ProbeService) *ERPProbeHandler {
	return &ERPProbeHandler{
		probe: probe,
	}
}

// RegisterRoutes mounts the probe endpoint
func (h *ERPProbeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/erp/probe", h.Probe)
}

// Probe authenticates against the ERP and reports the result. A failed
// probe is still a 200: the HTTP layer worked, the payload says whether
// the ERP did.
func (h *ERPProbeHandler) Probe(c *gin.Context) {
	result := h.probe.Check(c.Request.Context())
	h.Success(c, result)
}
