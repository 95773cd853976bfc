package persist

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRecord is one collection slot stored in the managed backend's
// Postgres. The whole collection is overwritten on every mutation, same
// contract as the file variant.
type SlotRecord struct {
	Key   string `gorm:"primaryKey"`
	Value []byte `gorm:"type:jsonb"`
}

// TableName names the slots table.
func (SlotRecord) TableName() string { return "collection_slots" }

// GormSlotStore keeps slots as rows in Postgres via GORM.
type GormSlotStore struct {
	db *gorm.DB
}

// NewGormSlotStore migrates the slots table and returns the store.
func NewGormSlotStore(db *gorm.DB) (*GormSlotStore, error) {
	if err := db.AutoMigrate(&SlotRecord{}); err != nil {
		return nil, err
	}
	return &GormSlotStore{db: db}, nil
}

func (s *GormSlotStore) Read(key string) ([]byte, bool, error) {
	var rec SlotRecord
	err := s.db.First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (s *GormSlotStore) Write(key string, value []byte) error {
	rec := SlotRecord{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rec).Error
}
