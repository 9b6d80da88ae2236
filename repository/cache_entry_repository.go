package repository

import (
	"context"
	"errors"
	"time"

	"ConcertHub/cache"
	"ConcertHub/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntryRepository stores upstream responses in the cache_entries table.
// It satisfies cache.MetadataStore.
type CacheEntryRepository struct {
	db    *gorm.DB
	clock cache.Clock
}

var _ cache.MetadataStore = (*CacheEntryRepository)(nil)

// NewCacheEntryRepository creates a repository. A nil clock means cache.SystemClock.
func NewCacheEntryRepository(db *gorm.DB, clock cache.Clock) *CacheEntryRepository {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &CacheEntryRepository{db: db, clock: clock}
}

// Get returns the entry's data and bumps its access counters. Expired rows
// are deleted and reported as a miss.
func (r *CacheEntryRepository) Get(ctx context.Context, cacheType cache.MetadataType, key string) ([]byte, bool, error) {
	var entry model.CacheEntry
	err := r.db.WithContext(ctx).
		Where("cache_type = ? AND cache_key = ?", string(cacheType), key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	now := r.clock.Now().UTC()
	if !now.Before(entry.ExpiresAt) {
		err := r.db.WithContext(ctx).Delete(&model.CacheEntry{}, "id = ?", entry.ID).Error
		return nil, false, err
	}

	err = r.db.WithContext(ctx).Model(&model.CacheEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"last_accessed": now,
			"access_count":  gorm.Expr("access_count + ?", 1),
		}).Error
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.CacheData), true, nil
}

// Set inserts or replaces the entry for (cacheType, key).
func (r *CacheEntryRepository) Set(ctx context.Context, cacheType cache.MetadataType, key string, value []byte, ttl time.Duration) error {
	now := r.clock.Now().UTC()
	entry := model.CacheEntry{
		CacheKey:     key,
		CacheType:    string(cacheType),
		CacheData:    string(value),
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
		LastAccessed: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_type"}, {Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"cache_data", "expires_at", "last_accessed"}),
	}).Create(&entry).Error
}

// Clear deletes the entries of cacheType, or every entry when it is empty.
func (r *CacheEntryRepository) Clear(ctx context.Context, cacheType cache.MetadataType) (int, error) {
	tx := r.db.WithContext(ctx)
	if cacheType != "" {
		tx = tx.Where("cache_type = ?", string(cacheType))
	} else {
		tx = tx.Where("1 = 1")
	}
	res := tx.Delete(&model.CacheEntry{})
	return int(res.RowsAffected), res.Error
}

// PurgeExpired deletes every expired row and returns how many were removed.
func (r *CacheEntryRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.clock.Now().UTC()).
		Delete(&model.CacheEntry{})
	return res.RowsAffected, res.Error
}
