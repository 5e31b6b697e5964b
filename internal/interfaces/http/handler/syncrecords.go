package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

const (
	defaultRecordLimit = 50
	maxRecordLimit     = 500
)

// SyncRecordHandler serves the sync audit trail for operators
type SyncRecordHandler struct {
	BaseHandler
	records syncdomain.RecordRepository
}

// NewSyncRecordHandler creates a new SyncRecordHandler
func NewSyncRecordHandler(records syncdomain.RecordRepository) *SyncRecordHandler {
	return &SyncRecordHandler{
		records: records,
	}
}

// RegisterRoutes mounts the sync record endpoints
func (h *SyncRecordHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sync/records", h.List)
}

// SyncRecordResponse is the JSON shape of one audit record
type SyncRecordResponse struct {
	ID           string    `json:"id"`
	EntityKind   string    `json:"entity_kind"`
	EntityID     string    `json:"entity_id"`
	Direction    string    `json:"direction"`
	Method       string    `json:"method"`
	Success      bool      `json:"success"`
	Reference    string    `json:"reference,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// SyncRecordListResponse wraps a page of audit records
type SyncRecordListResponse struct {
	Records []SyncRecordResponse `json:"records"`
	Count   int                  `json:"count"`
}

// List returns recent sync records, newest first. Supports filtering by
// entity kind and success, and capping the page size.
func (h *SyncRecordHandler) List(c *gin.Context) {
	filter := syncdomain.RecordFilter{Limit: defaultRecordLimit}

	if kind := c.Query("kind"); kind != "" {
		entityKind := syncdomain.EntityKind(kind)
		if !entityKind.IsValid() {
			h.BadRequest(c, "Unknown entity kind: "+kind)
			return
		}
		filter.EntityKind = entityKind
	}

	if success := c.Query("success"); success != "" {
		v, err := strconv.ParseBool(success)
		if err != nil {
			h.BadRequest(c, "Invalid success filter, expected true or false")
			return
		}
		filter.Success = &v
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			h.BadRequest(c, "Invalid limit, expected a positive integer")
			return
		}
		if n > maxRecordLimit {
			n = maxRecordLimit
		}
		filter.Limit = n
	}

	records, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		h.InternalError(c, "Failed to list sync records")
		return
	}

	resp := SyncRecordListResponse{
		Records: make([]SyncRecordResponse, 0, len(records)),
		Count:   len(records),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, toSyncRecordResponse(r))
	}

	h.Success(c, resp)
}

func toSyncRecordResponse(r *syncdomain.Record) SyncRecordResponse {
	return SyncRecordResponse{
		ID:           r.ID.String(),
		EntityKind:   r.EntityKind.String(),
		EntityID:     r.EntityID,
		Direction:    r.Direction.String(),
		Method:       string(r.Method),
		Success:      r.Success,
		Reference:    r.Reference,
		ErrorMessage: r.ErrorMessage,
		DurationMS:   r.DurationMS,
		CreatedAt:    r.CreatedAt,
	}
}
