package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/persistence/models"
)

// List sizing bounds. The operations endpoint pages through records; an
// unbounded listing would scan the whole audit table.
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// GormSyncRecordRepository implements sync.RecordRepository using GORM
type GormSyncRecordRepository struct {
	db *gorm.DB
}

// NewGormSyncRecordRepository creates a new GormSyncRecordRepository
func NewGormSyncRecordRepository(db *gorm.DB) *GormSyncRecordRepository {
	return &GormSyncRecordRepository{db: db}
}

// Save stores one audit record
func (r *GormSyncRecordRepository) Save(ctx context.Context, record *syncdomain.Record) error {
	var model models.SyncRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// List returns the most recent records matching the filter, newest first
func (r *GormSyncRecordRepository) List(ctx context.Context, filter syncdomain.RecordFilter) ([]*syncdomain.Record, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncRecordModel{})

	if filter.EntityKind != "" {
		query = query.Where("entity_kind = ?", filter.EntityKind.String())
	}
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var recordModels []models.SyncRecordModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*syncdomain.Record, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, nil
}

// CountFailuresSince counts failed syncs after the given time
func (r *GormSyncRecordRepository) CountFailuresSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SyncRecordModel{}).
		Where("success = ? AND created_at >= ?", false, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSyncRecordRepository implements sync.RecordRepository
var _ syncdomain.RecordRepository = (*GormSyncRecordRepository)(nil)
