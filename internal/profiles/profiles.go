// Package profiles is the read-only boundary to farmer profile records. The
// alert pipeline only cares about two projections: which locations are
// tracked and which crop types are actively grown.
package profiles

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CropList stores a profile's crop types as a JSON array column.
type CropList []string

// Value serializes the list for storage.
func (c CropList) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan deserializes the list from storage.
func (c *CropList) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("unsupported crop list column type %T", value)
	}
}

// Profile is one farmer's profile row. Profile editing belongs to the CRUD
// surface; this service only reads.
type Profile struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"index"`
	Title        string
	Location     string `gorm:"index"`
	Experience   string
	FarmSize     string
	PrimaryCrops CropList `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store queries profile records for the scheduler's location and crop sets.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the profile database and ensures the schema exists.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open profile database: %w", err)
	}
	if err := db.AutoMigrate(&Profile{}); err != nil {
		return nil, fmt.Errorf("migrate profile schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save upserts a profile. Used by seeding tools and tests; the pipeline
// itself never writes.
func (s *Store) Save(ctx context.Context, p *Profile) error {
	return s.db.WithContext(ctx).Save(p).Error
}

// ActiveLocations returns the distinct, sorted set of locations appearing on
// at least one profile.
func (s *Store) ActiveLocations(ctx context.Context) ([]string, error) {
	var locations []string
	err := s.db.WithContext(ctx).
		Model(&Profile{}).
		Where("location <> ''").
		Distinct().
		Pluck("location", &locations).Error
	if err != nil {
		return nil, fmt.Errorf("query active locations: %w", err)
	}
	sort.Strings(locations)
	return locations, nil
}

// ActiveCropTypes returns the distinct, sorted union of crop types across
// all profiles.
func (s *Store) ActiveCropTypes(ctx context.Context) ([]string, error) {
	var lists []CropList
	err := s.db.WithContext(ctx).
		Model(&Profile{}).
		Where("primary_crops <> '' AND primary_crops <> '[]'").
		Pluck("primary_crops", &lists).Error
	if err != nil {
		return nil, fmt.Errorf("query active crop types: %w", err)
	}

	seen := make(map[string]struct{})
	var crops []string
	for _, list := range lists {
		for _, crop := range list {
			if crop == "" {
				continue
			}
			if _, dup := seen[crop]; dup {
				continue
			}
			seen[crop] = struct{}{}
			crops = append(crops, crop)
		}
	}
	sort.Strings(crops)
	return crops, nil
}
