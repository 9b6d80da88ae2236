package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CacheEntry is one persisted upstream response in the metadata cache table.
type CacheEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	CacheKey     string    `json:"cache_key" gorm:"size:255;not null;uniqueIndex:idx_cache_type_key,priority:2"`
	CacheType    string    `json:"cache_type" gorm:"size:50;not null;uniqueIndex:idx_cache_type_key,priority:1"`
	CacheData    string    `json:"cache_data" gorm:"type:longtext;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	AccessCount  int64     `json:"access_count" gorm:"default:0"`
}

// TableName returns the cache table name.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (e *CacheEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
