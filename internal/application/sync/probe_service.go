package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
)

// ProbeResult reports one connectivity check against the ERP.
type ProbeResult struct {
	Connected bool      `json:"connected"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}

// ProbeService checks ERP connectivity on demand for the ops API. The
// check exercises the full credential path, not just the socket.
type ProbeService struct {
	gateway syncdomain.Gateway
	logger  *zap.Logger
}

// NewProbeService creates a probe service.
func NewProbeService(gateway syncdomain.Gateway, logger *zap.Logger) *ProbeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProbeService{gateway: gateway, logger: logger}
}

// Check acquires a credential to prove the ERP is reachable and accepting
// the configured account.
func (s *ProbeService) Check(ctx context.Context) ProbeResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "probe", "check")
	defer span.End()

	connected, message := s.gateway.Probe(ctx)
	if connected {
		s.logger.Debug("erp probe succeeded")
	} else {
		telemetry.AddEvent(span, "probe_failed", "reason", message)
		s.logger.Warn("erp probe failed", zap.String("reason", message))
	}
	return ProbeResult{Connected: connected, Message: message, CheckedAt: time.Now().UTC()}
}
