package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/erp/ordersync/internal/domain/sync"
	"github.com/erp/ordersync/internal/infrastructure/persistence/models"
)

// GormSyncJournal implements the sync.Journal port using GORM
type GormSyncJournal struct {
	db *gorm.DB
}

// NewGormSyncJournal creates a new GormSyncJournal
func NewGormSyncJournal(db *gorm.DB) *GormSyncJournal {
	return &GormSyncJournal{db: db}
}

// Record persists one journal entry
func (r *GormSyncJournal) Record(ctx context.Context, rec *sync.SyncRecord) error {
	var model models.SyncRecordModel
	model.FromDomain(rec)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Recent returns the most recent entries, newest first
func (r *GormSyncJournal) Recent(ctx context.Context, limit, offset int) ([]sync.SyncRecord, error) {
	var rows []models.SyncRecordModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]sync.SyncRecord, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].ToDomain())
	}
	return records, nil
}

// CountByOrder returns how many entries exist for an order id
func (r *GormSyncJournal) CountByOrder(ctx context.Context, orderID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SyncRecordModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSyncJournal implements the Journal port
var _ sync.Journal = (*GormSyncJournal)(nil)
