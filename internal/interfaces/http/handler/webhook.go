package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/erplink/bridge/internal/application/sync"
	"github.com/erplink/bridge/internal/domain/storefront"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/archive"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
	"github.com/erplink/bridge/internal/interfaces/http/dto"
)

// Webhook delivery headers.
const (
	// HeaderWebhookSignature carries base64(HMAC-SHA256(secret, raw body)).
	HeaderWebhookSignature = "X-Webhook-Hmac-Sha256"
	// HeaderWebhookEventID is the platform's delivery identifier, used for
	// deduplication. Deliveries without it fall back to topic plus the
	// source entity ID.
	HeaderWebhookEventID = "X-Webhook-Event-Id"
)

// WebhookHandlerConfig carries the dependencies of the webhook endpoints.
type WebhookHandlerConfig struct {
	Orders      *syncapp.OrderSyncService
	Customers   *syncapp.CustomerSyncService
	Refunds     *syncapp.RefundSyncService
	Dedup       syncdomain.IdempotencyStore
	DedupConfig syncdomain.IdempotencyConfig
	// Secret is the shared HMAC secret. Empty disables signature checks,
	// which is only acceptable in local development.
	Secret   string
	Archiver archive.PayloadArchiver
	Metrics  *telemetry.BridgeMetrics
	Logger   *zap.Logger
}

// WebhookHandler receives storefront event deliveries and hands them to the
// sync services. These endpoints are called by the commerce platform; they
// authenticate by HMAC signature, never by bearer token.
type WebhookHandler struct {
	BaseHandler
	orders    *syncapp.OrderSyncService
	customers *syncapp.CustomerSyncService
	refunds   *syncapp.RefundSyncService
	dedup     syncdomain.IdempotencyStore
	dedupCfg  syncdomain.IdempotencyConfig
	secret    string
	archiver  archive.PayloadArchiver
	metrics   *telemetry.BridgeMetrics
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(cfg WebhookHandlerConfig) *WebhookHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		orders:    cfg.Orders,
		customers: cfg.Customers,
		refunds:   cfg.Refunds,
		dedup:     cfg.Dedup,
		dedupCfg:  cfg.DedupConfig,
		secret:    cfg.Secret,
		archiver:  cfg.Archiver,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts one endpoint per delivery topic.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/create", h.OrderCreated)
	rg.POST("/orders/updated", h.OrderUpdated)
	rg.POST("/orders/cancelled", h.OrderCancelled)
	rg.POST("/customers/create", h.CustomerCreated)
	rg.POST("/customers/update", h.CustomerUpdated)
	rg.POST("/refunds/create", h.RefundCreated)
}

// WebhookAck is the acknowledgment body for every accepted delivery. The
// envelope's success flag says the delivery was handled; Outcome carries
// whether the sync itself went through.
type WebhookAck struct {
	EventID   string              `json:"event_id"`
	Topic     string              `json:"topic"`
	Duplicate bool                `json:"duplicate"`
	Outcome   *syncdomain.Outcome `json:"outcome,omitempty"`
}

// processFunc runs the sync for a decoded delivery.
type processFunc func(ctx context.Context) *syncdomain.Outcome

// decodeFunc unmarshals a delivery body, returning the source entity ID and
// the sync to run for it.
type decodeFunc func(body []byte) (string, processFunc, error)

// OrderCreated handles orders/create deliveries
func (h *WebhookHandler) OrderCreated(c *gin.Context) {
	h.handle(c, storefront.TopicOrderCreate, func(body []byte) (string, processFunc, error) {
		var order storefront.Order
		if err := json.Unmarshal(body, &order); err != nil {
			return "", nil, err
		}
		return strconv.FormatInt(order.ID, 10), func(ctx context.Context) *syncdomain.Outcome {
			return h.orders.ProcessNew(ctx, &order)
		}, nil
	})
}

// OrderUpdated handles orders/updated deliveries
func (h *WebhookHandler) OrderUpdated(c *gin.Context) {
	h.handle(c, storefront.TopicOrderUpdate, h.decodeStatusUpdate)
}

// OrderCancelled handles orders/cancelled deliveries. Cancellation is a
// status propagation like any other update; the payload's cancelled_at
// timestamp drives the resolution.
func (h *WebhookHandler) OrderCancelled(c *gin.Context) {
	h.handle(c, storefront.TopicOrderCancel, h.decodeStatusUpdate)
}

func (h *WebhookHandler) decodeStatusUpdate(body []byte) (string, processFunc, error) {
	var order storefront.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return "", nil, err
	}
	return strconv.FormatInt(order.ID, 10), func(ctx context.Context) *syncdomain.Outcome {
		return h.orders.ProcessUpdate(ctx, &order)
	}, nil
}

// CustomerCreated handles customers/create deliveries
func (h *WebhookHandler) CustomerCreated(c *gin.Context) {
	h.handle(c, storefront.TopicCustomerCreate, func(body []byte) (string, processFunc, error) {
		var customer storefront.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			return "", nil, err
		}
		return strconv.FormatInt(customer.ID, 10), func(ctx context.Context) *syncdomain.Outcome {
			return h.customers.ProcessCreate(ctx, &customer)
		}, nil
	})
}

// CustomerUpdated handles customers/update deliveries
func (h *WebhookHandler) CustomerUpdated(c *gin.Context) {
	h.handle(c, storefront.TopicCustomerUpdate, func(body []byte) (string, processFunc, error) {
		var customer storefront.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			return "", nil, err
		}
		return strconv.FormatInt(customer.ID, 10), func(ctx context.Context) *syncdomain.Outcome {
			return h.customers.ProcessUpdate(ctx, &customer)
		}, nil
	})
}

// RefundCreated handles refunds/create deliveries
func (h *WebhookHandler) RefundCreated(c *gin.Context) {
	h.handle(c, storefront.TopicRefundCreate, func(body []byte) (string, processFunc, error) {
		var refund storefront.Refund
		if err := json.Unmarshal(body, &refund); err != nil {
			return "", nil, err
		}
		return strconv.FormatInt(refund.ID, 10), func(ctx context.Context) *syncdomain.Outcome {
			return h.refunds.Process(ctx, &refund)
		}, nil
	})
}

// handle is the shared delivery pipeline: read, verify, decode, dedup,
// archive, process, acknowledge.
func (h *WebhookHandler) handle(c *gin.Context, topic storefront.Topic, decode decodeFunc) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge,
				dto.ErrCodeRequestTooLarge, "Delivery body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Unreadable request body")
		return
	}

	if h.secret != "" {
		signature := c.GetHeader(HeaderWebhookSignature)
		if signature == "" {
			h.Unauthorized(c, dto.ErrCodeSignatureInvalid, "Missing webhook signature")
			return
		}
		if !storefront.VerifySignature(body, signature, h.secret) {
			h.logger.Warn("webhook signature mismatch",
				zap.String("topic", topic.String()),
				zap.String("remote", c.ClientIP()),
			)
			h.Unauthorized(c, dto.ErrCodeSignatureInvalid, "Webhook signature mismatch")
			return
		}
	}

	if h.metrics != nil {
		h.metrics.RecordWebhookReceived(ctx, topic.String())
	}

	entityID, process, err := decode(body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid JSON payload")
		return
	}

	eventID := c.GetHeader(HeaderWebhookEventID)
	if eventID == "" {
		eventID = topic.String() + ":" + entityID
	}

	if h.dedup != nil && h.dedupCfg.Enabled {
		first, err := h.dedup.MarkProcessed(ctx, eventID, h.dedupCfg.TTL)
		if err != nil {
			// A broken dedup store must not drop deliveries
			h.logger.Warn("idempotency check failed, processing delivery anyway",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		} else if !first {
			if h.metrics != nil {
				h.metrics.RecordDuplicateDelivery(ctx, topic.String())
			}
			h.logger.Info("duplicate delivery acknowledged",
				zap.String("event_id", eventID),
				zap.String("topic", topic.String()),
			)
			h.Success(c, WebhookAck{EventID: eventID, Topic: topic.String(), Duplicate: true})
			return
		}
	}

	if h.archiver != nil {
		if err := h.archiver.Archive(ctx, topic.String(), eventID, body); err != nil {
			h.logger.Warn("webhook payload not archived",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
	}

	outcome := process(ctx)

	// Sync failures are acknowledged 200 all the same. The storefront's
	// redelivery would fail identically; the failure lives in the outcome
	// and the audit records instead.
	h.Success(c, WebhookAck{EventID: eventID, Topic: topic.String(), Outcome: outcome})
}
