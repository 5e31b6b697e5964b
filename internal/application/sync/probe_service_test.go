package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestProbeService_Check_Connected(t *testing.T) {
	gateway := new(MockGateway)
	service := NewProbeService(gateway, zap.NewNop())

	gateway.On("Probe", mock.Anything).Return(true, "erp reachable, credential issued")

	result := service.Check(context.Background())

	assert.True(t, result.Connected)
	assert.Equal(t, "erp reachable, credential issued", result.Message)
	assert.False(t, result.CheckedAt.IsZero())
	gateway.AssertExpectations(t)
}

func TestProbeService_Check_Disconnected(t *testing.T) {
	gateway := new(MockGateway)
	service := NewProbeService(gateway, nil)

	gateway.On("Probe", mock.Anything).Return(false, "sync: credential acquisition failed: HTTP 503")

	result := service.Check(context.Background())

	assert.False(t, result.Connected)
	assert.Contains(t, result.Message, "credential acquisition failed")
}
