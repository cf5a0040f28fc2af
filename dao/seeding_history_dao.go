package dao

import (
	"context"
	"fmt"
	"strings"

	"auto_trainer/entity"

	"gorm.io/gorm"
)

type SeedingHistoryDAO struct {
	DB *gorm.DB
}

func NewSeedingHistoryDAO(db *gorm.DB) *SeedingHistoryDAO {
	return &SeedingHistoryDAO{DB: db}
}

func (d *SeedingHistoryDAO) WithTx(tx *gorm.DB) *SeedingHistoryDAO {
	return &SeedingHistoryDAO{DB: tx}
}

// Latest returns the most recently applied seed file, or nil when nothing
// has been seeded yet. Seed file names sort in application order.
func (d *SeedingHistoryDAO) Latest(ctx context.Context) (*entity.SeedingHistory, error) {
	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest seeding history failed: %w", err)
	}

	var history entity.SeedingHistory
	result := dbConn.Order("file_name DESC").Limit(1).Find(&history)
	if result.Error != nil {
		return nil, fmt.Errorf("find latest seeding history failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &history, nil
}

func (d *SeedingHistoryDAO) Save(ctx context.Context, history *entity.SeedingHistory) error {
	if history == nil {
		return ErrNilEntity
	}
	if strings.TrimSpace(history.FileName) == "" {
		return fmt.Errorf("save seeding history failed: empty file name")
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return fmt.Errorf("save seeding history failed: %w", err)
	}
	if err := dbConn.Create(history).Error; err != nil {
		return fmt.Errorf("save seeding history failed: %w", err)
	}
	return nil
}
