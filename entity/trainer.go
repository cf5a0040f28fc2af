package entity

import (
	"time"

	"auto_trainer/infrastructure/idgen"

	"gorm.io/gorm"
)

// TaskTypeTextClassification is the only task type trainers support.
const TaskTypeTextClassification = "text-classification"

type Trainer struct {
	ID          string          `gorm:"primaryKey;column:id;size:32" json:"id"`
	Name        string          `gorm:"column:name;size:255;not null" json:"name"`
	Description string          `gorm:"column:description;type:text;not null" json:"description"`
	Configs     []TrainerConfig `gorm:"foreignKey:TrainerID;references:ID" json:"configs,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Trainer) TableName() string {
	return "trainers"
}

func (t *Trainer) BeforeCreate(*gorm.DB) error {
	if t.ID != "" {
		return nil
	}
	id, err := idgen.New(idgen.PrefixTrainer)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

type TrainerConfig struct {
	ID                       string        `gorm:"primaryKey;column:id;size:32" json:"id"`
	TrainerID                string        `gorm:"column:trainer_id;size:32;not null;index" json:"trainerId"`
	TaskType                 string        `gorm:"column:task_type;size:64;not null" json:"taskType"`
	TaskDescription          string        `gorm:"column:task_description;type:text;not null" json:"taskDescription"`
	DomainDescription        string        `gorm:"column:domain_description;type:text;not null" json:"domainDescription"`
	LabelsConfig             LabelsConfig  `gorm:"column:labels_config;not null" json:"labelsConfig"`
	RefinedTaskDescription   *string       `gorm:"column:refined_task_description;type:text" json:"refinedTaskDescription"`
	RefinedDomainDescription *string       `gorm:"column:refined_domain_description;type:text" json:"refinedDomainDescription"`
	RefinedLabelsConfig      *LabelsConfig `gorm:"column:refined_labels_config" json:"refinedLabelsConfig"`
	BudgetLimit              *float64      `gorm:"column:budget_limit;type:decimal(12,2)" json:"budgetLimit"`
	BudgetUsed               float64       `gorm:"column:budget_used;type:decimal(12,2);not null;default:0" json:"budgetUsed"`
	ActivatedAt              *time.Time    `gorm:"column:activated_at;index" json:"activatedAt"`
	CreatedAt                time.Time     `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt                time.Time     `gorm:"column:updated_at" json:"updatedAt"`
}

func (TrainerConfig) TableName() string {
	return "trainer_configs"
}

func (c *TrainerConfig) BeforeCreate(*gorm.DB) error {
	if c.ID != "" {
		return nil
	}
	id, err := idgen.New(idgen.PrefixTrainerConfig)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}
