package dao

import (
	"context"
	"fmt"

	"auto_trainer/entity"

	"gorm.io/gorm"
)

type TrainerDAO struct {
	DB *gorm.DB
}

func NewTrainerDAO(db *gorm.DB) *TrainerDAO {
	return &TrainerDAO{DB: db}
}

// WithTx returns a DAO bound to tx.
func (d *TrainerDAO) WithTx(tx *gorm.DB) *TrainerDAO {
	return &TrainerDAO{DB: tx}
}

func (d *TrainerDAO) Save(ctx context.Context, trainer *entity.Trainer) error {
	if trainer == nil {
		return ErrNilEntity
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return fmt.Errorf("save trainer failed: %w", err)
	}
	if err := dbConn.Omit("Configs").Create(trainer).Error; err != nil {
		return fmt.Errorf("save trainer failed: %w", err)
	}
	return nil
}

// FindAll lists trainers newest first. Rows created in the same instant are
// ordered by id so pagination stays stable.
func (d *TrainerDAO) FindAll(ctx context.Context, opts entity.ListOptions) ([]entity.Trainer, error) {
	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find trainers failed: %w", err)
	}

	trainers := make([]entity.Trainer, 0)
	query := paginate(dbConn.Model(&entity.Trainer{}).Order("created_at DESC").Order("id DESC"), opts)
	if err := query.Find(&trainers).Error; err != nil {
		return nil, fmt.Errorf("find trainers failed: %w", err)
	}
	return trainers, nil
}

func (d *TrainerDAO) FindByID(ctx context.Context, id string) (*entity.Trainer, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find trainer by id failed: %w", err)
	}

	var trainer entity.Trainer
	result := dbConn.Where("id = ?", id).Limit(1).Find(&trainer)
	if result.Error != nil {
		return nil, fmt.Errorf("find trainer by id failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFound("trainer", id)
	}
	return &trainer, nil
}

// FindByIDWithConfigs loads the trainer and all of its configs, newest first.
func (d *TrainerDAO) FindByIDWithConfigs(ctx context.Context, id string) (*entity.Trainer, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find trainer with configs failed: %w", err)
	}

	var trainer entity.Trainer
	result := dbConn.
		Preload("Configs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		Where("id = ?", id).
		Limit(1).
		Find(&trainer)
	if result.Error != nil {
		return nil, fmt.Errorf("find trainer with configs failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFound("trainer", id)
	}
	return &trainer, nil
}

func (d *TrainerDAO) UpdateByID(ctx context.Context, id string, updates map[string]interface{}) (*entity.Trainer, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, ErrEmptyUpdate
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("update trainer failed: %w", err)
	}

	result := dbConn.Model(&entity.Trainer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update trainer failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFound("trainer", id)
	}
	return d.FindByID(ctx, id)
}
