package storage

import (
	"context"
	"time"

	"options-collector/internal/models"

	"gorm.io/gorm"
)

// Store is the persistence capability the orchestrators consume. All writes
// are inserts; nothing is updated in place.
type Store interface {
	SaveAnalytics(ctx context.Context, rec *models.OptionRecord) error
	SaveGreeks(ctx context.Context, rec *models.GreeksRecord) error
	SaveIVPoint(ctx context.Context, p *models.IVPoint) error

	// AnalyticsExistsOnDay reports whether an analytics row for the contract
	// already exists with a created_at inside [day, day+24h). Used by the
	// backfill dedup check.
	AnalyticsExistsOnDay(ctx context.Context, symbol string, strike float64, expiration time.Time, optionType string, day time.Time) (bool, error)
}

// DB implements Store on top of GORM/MySQL.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (s *DB) SaveAnalytics(ctx context.Context, rec *models.OptionRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *DB) SaveGreeks(ctx context.Context, rec *models.GreeksRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *DB) SaveIVPoint(ctx context.Context, p *models.IVPoint) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *DB) AnalyticsExistsOnDay(ctx context.Context, symbol string, strike float64, expiration time.Time, optionType string, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.OptionRecord{}).
		Where("symbol = ? AND strike_price = ? AND expiration_date = ? AND option_type = ?",
			symbol, strike, expiration, optionType).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
