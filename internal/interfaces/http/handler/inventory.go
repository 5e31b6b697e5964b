package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/erplink/bridge/internal/application/sync"
)

// InventoryHandler serves the normalized ERP inventory snapshot and the
// manual sync trigger
type InventoryHandler struct {
	BaseHandler
	inventory *syncapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory *syncapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
	}
}

// RegisterRoutes mounts the inventory endpoints
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory", h.GetSnapshot)
	rg.POST("/inventory/sync", h.TriggerSync)
}

// GetSnapshot returns the latest normalized inventory snapshot. The first
// request after startup pulls from the ERP; afterwards the scheduler keeps
// the snapshot fresh and this serves from memory.
func (h *InventoryHandler) GetSnapshot(c *gin.Context) {
	snapshot := h.inventory.Latest()
	if snapshot == nil {
		pulled, outcome := h.inventory.Pull(c.Request.Context())
		if !outcome.Success {
			h.ServiceUnavailable(c, outcome.Error)
			return
		}
		snapshot = pulled
	}

	h.Success(c, snapshot)
}

// TriggerSync runs an inventory pull immediately and reports its outcome
func (h *InventoryHandler) TriggerSync(c *gin.Context) {
	snapshot, outcome := h.inventory.Pull(c.Request.Context())

	data := gin.H{"outcome": outcome}
	if snapshot != nil {
		data["total_items"] = snapshot.TotalItems()
		data["locations"] = len(snapshot.Locations)
		data["fetched_at"] = snapshot.FetchedAt
	}

	h.Success(c, data)
}
