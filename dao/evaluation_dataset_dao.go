package dao

import (
	"context"
	"fmt"

	"auto_trainer/entity"

	"gorm.io/gorm"
)

type EvaluationDatasetDAO struct {
	DB *gorm.DB
}

func NewEvaluationDatasetDAO(db *gorm.DB) *EvaluationDatasetDAO {
	return &EvaluationDatasetDAO{DB: db}
}

func (d *EvaluationDatasetDAO) WithTx(tx *gorm.DB) *EvaluationDatasetDAO {
	return &EvaluationDatasetDAO{DB: tx}
}

func (d *EvaluationDatasetDAO) Save(ctx context.Context, dataset *entity.EvaluationDataset) error {
	if dataset == nil {
		return ErrNilEntity
	}
	if err := validID(dataset.TrainerID); err != nil {
		return err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return fmt.Errorf("save evaluation dataset failed: %w", err)
	}
	if err := dbConn.Create(dataset).Error; err != nil {
		return fmt.Errorf("save evaluation dataset failed: %w", err)
	}
	return nil
}

func (d *EvaluationDatasetDAO) FindByTrainerID(ctx context.Context, trainerID string) ([]entity.EvaluationDataset, error) {
	if err := validID(trainerID); err != nil {
		return nil, err
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find evaluation datasets failed: %w", err)
	}

	datasets := make([]entity.EvaluationDataset, 0)
	err = dbConn.
		Where("trainer_id = ?", trainerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&datasets).Error
	if err != nil {
		return nil, fmt.Errorf("find evaluation datasets failed: %w", err)
	}
	return datasets, nil
}
