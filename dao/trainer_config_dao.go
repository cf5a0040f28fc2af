package dao

import (
	"context"
	"fmt"

	"auto_trainer/entity"

	"gorm.io/gorm"
)

type TrainerConfigDAO struct {
	DB *gorm.DB
}

func NewTrainerConfigDAO(db *gorm.DB) *TrainerConfigDAO {
	return &TrainerConfigDAO{DB: db}
}

func (d *TrainerConfigDAO) WithTx(tx *gorm.DB) *TrainerConfigDAO {
	return &TrainerConfigDAO{DB: tx}
}

func (d *TrainerConfigDAO) Save(ctx context.Context, cfg *entity.TrainerConfig) error {
	if cfg == nil {
		return ErrNilEntity
	}
	if err := validID(cfg.TrainerID); err != nil {
		return err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return fmt.Errorf("save trainer config failed: %w", err)
	}
	if err := dbConn.Create(cfg).Error; err != nil {
		return fmt.Errorf("save trainer config failed: %w", err)
	}
	return nil
}

func (d *TrainerConfigDAO) FindByID(ctx context.Context, id string) (*entity.TrainerConfig, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find trainer config by id failed: %w", err)
	}

	var cfg entity.TrainerConfig
	result := dbConn.Where("id = ?", id).Limit(1).Find(&cfg)
	if result.Error != nil {
		return nil, fmt.Errorf("find trainer config by id failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFound("trainer config", id)
	}
	return &cfg, nil
}

// FindByTrainerID lists the configs of one trainer, newest first.
func (d *TrainerConfigDAO) FindByTrainerID(ctx context.Context, trainerID string) ([]entity.TrainerConfig, error) {
	if err := validID(trainerID); err != nil {
		return nil, err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find trainer configs failed: %w", err)
	}

	configs := make([]entity.TrainerConfig, 0)
	err = dbConn.
		Where("trainer_id = ?", trainerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("find trainer configs failed: %w", err)
	}
	return configs, nil
}

// UpdateByID writes only the columns present in updates and returns the
// stored row.
func (d *TrainerConfigDAO) UpdateByID(ctx context.Context, id string, updates map[string]interface{}) (*entity.TrainerConfig, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, ErrEmptyUpdate
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("update trainer config failed: %w", err)
	}

	result := dbConn.Model(&entity.TrainerConfig{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update trainer config failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFound("trainer config", id)
	}
	return d.FindByID(ctx, id)
}
