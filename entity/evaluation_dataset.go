package entity

import (
	"time"

	"auto_trainer/infrastructure/idgen"

	"gorm.io/gorm"
)

const (
	DatasetFormatCSV   = "csv"
	DatasetFormatJSON  = "json"
	DatasetFormatJSONL = "jsonl"
)

// MinEvaluationExamples is the smallest evaluation set a trainer accepts.
const MinEvaluationExamples = 150

// EvaluationDataset is a human-verified evaluation file uploaded for a trainer.
type EvaluationDataset struct {
	ID           string    `gorm:"primaryKey;column:id;size:32" json:"id"`
	TrainerID    string    `gorm:"column:trainer_id;size:32;not null;index" json:"trainerId"`
	FileName     string    `gorm:"column:file_name;size:255;not null" json:"fileName"`
	StoredPath   string    `gorm:"column:stored_path;size:1024;not null" json:"storedPath"`
	Format       string    `gorm:"column:format;size:16;not null" json:"format"`
	ExampleCount int       `gorm:"column:example_count;not null" json:"exampleCount"`
	SizeBytes    int64     `gorm:"column:size_bytes;not null" json:"sizeBytes"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (EvaluationDataset) TableName() string {
	return "evaluation_datasets"
}

func (d *EvaluationDataset) BeforeCreate(*gorm.DB) error {
	if d.ID != "" {
		return nil
	}
	id, err := idgen.New(idgen.PrefixEvaluationDataset)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}
