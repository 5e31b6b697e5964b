package models

import (
	"time"

	"github.com/google/uuid"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

// SyncRecordModel is the persistence model for sync audit records. The table
// is append-only: one row per sync invocation, written after the ERP call
// finishes.
type SyncRecordModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityKind   string    `gorm:"type:varchar(20);not null;index:idx_sync_records_kind_created"`
	EntityID     string    `gorm:"type:varchar(64);not null;index"`
	Direction    string    `gorm:"type:varchar(10);not null"`
	Method       string    `gorm:"type:varchar(40);not null"`
	Success      bool      `gorm:"not null;index:idx_sync_records_success_created,priority:1"`
	Reference    string    `gorm:"type:varchar(100)"`
	ErrorMessage string    `gorm:"type:text"`
	DurationMS   int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index:idx_sync_records_kind_created;index:idx_sync_records_success_created,priority:2"`
}

// TableName returns the table name for GORM
func (SyncRecordModel) TableName() string {
	return "sync_records"
}

// ToDomain converts the persistence model to a domain sync record.
func (m *SyncRecordModel) ToDomain() *syncdomain.Record {
	return &syncdomain.Record{
		ID:           m.ID,
		EntityKind:   syncdomain.EntityKind(m.EntityKind),
		EntityID:     m.EntityID,
		Direction:    syncdomain.Direction(m.Direction),
		Method:       syncdomain.Method(m.Method),
		Success:      m.Success,
		Reference:    m.Reference,
		ErrorMessage: m.ErrorMessage,
		DurationMS:   m.DurationMS,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain sync record.
func (m *SyncRecordModel) FromDomain(r *syncdomain.Record) {
	m.ID = r.ID
	m.EntityKind = r.EntityKind.String()
	m.EntityID = r.EntityID
	m.Direction = r.Direction.String()
	m.Method = r.Method.String()
	m.Success = r.Success
	m.Reference = r.Reference
	m.ErrorMessage = r.ErrorMessage
	m.DurationMS = r.DurationMS
	m.CreatedAt = r.CreatedAt
}
