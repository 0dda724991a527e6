package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/ordersync/internal/domain/sync"
)

// SyncRecordModel is the persistence model for the SyncRecord domain entity.
type SyncRecordModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key"`
	OrderID    string             `gorm:"type:varchar(64);not null;index:idx_sync_records_order"`
	Operation  sync.SyncOperation `gorm:"type:varchar(20);not null"`
	Outcome    sync.SyncOutcome   `gorm:"type:varchar(20);not null"`
	DocumentID string             `gorm:"type:varchar(64)"`
	Detail     string             `gorm:"type:text"`
	CreatedAt  time.Time          `gorm:"not null;index:idx_sync_records_created_at"`
}

// TableName returns the table name for GORM
func (SyncRecordModel) TableName() string {
	return "sync_records"
}

// ToDomain converts the persistence model to a domain SyncRecord.
func (m *SyncRecordModel) ToDomain() *sync.SyncRecord {
	return &sync.SyncRecord{
		ID:         m.ID,
		OrderID:    m.OrderID,
		Operation:  m.Operation,
		Outcome:    m.Outcome,
		DocumentID: m.DocumentID,
		Detail:     m.Detail,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncRecord.
func (m *SyncRecordModel) FromDomain(rec *sync.SyncRecord) {
	m.ID = rec.ID
	m.OrderID = rec.OrderID
	m.Operation = rec.Operation
	m.Outcome = rec.Outcome
	m.DocumentID = rec.DocumentID
	m.Detail = rec.Detail
	m.CreatedAt = rec.CreatedAt
}
