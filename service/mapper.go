package service

import "auto_trainer/entity"

func toTrainerDetail(t *entity.Trainer) entity.TrainerDetail {
	return entity.TrainerDetail{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTrainerConfigDetail(c *entity.TrainerConfig) entity.TrainerConfigDetail {
	return entity.TrainerConfigDetail{
		ID:                       c.ID,
		TrainerID:                c.TrainerID,
		TaskType:                 c.TaskType,
		TaskDescription:          c.TaskDescription,
		DomainDescription:        c.DomainDescription,
		LabelsConfig:             c.LabelsConfig,
		RefinedTaskDescription:   c.RefinedTaskDescription,
		RefinedDomainDescription: c.RefinedDomainDescription,
		RefinedLabelsConfig:      c.RefinedLabelsConfig,
		BudgetLimit:              c.BudgetLimit,
		BudgetUsed:               c.BudgetUsed,
		ActivatedAt:              c.ActivatedAt,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
}

// toTrainerDetailWithConfigs keeps the configs in the order loaded (newest
// first) and picks the active one.
func toTrainerDetailWithConfigs(t *entity.Trainer) entity.TrainerDetailWithConfigs {
	configs := make([]entity.TrainerConfigDetail, 0, len(t.Configs))
	for i := range t.Configs {
		configs = append(configs, toTrainerConfigDetail(&t.Configs[i]))
	}
	return entity.TrainerDetailWithConfigs{
		TrainerDetail: toTrainerDetail(t),
		Configs:       configs,
		ActiveConfig:  SelectActiveConfig(configs),
	}
}

// SelectActiveConfig returns the config with the latest activatedAt, or nil
// when no config was ever activated. Ties go to the earlier list entry.
func SelectActiveConfig(configs []entity.TrainerConfigDetail) *entity.TrainerConfigDetail {
	var active *entity.TrainerConfigDetail
	for i := range configs {
		c := &configs[i]
		if !c.IsActive() {
			continue
		}
		if active == nil || c.ActivatedAt.After(*active.ActivatedAt) {
			active = c
		}
	}
	if active == nil {
		return nil
	}
	selected := *active
	return &selected
}

func toEvaluationDatasetDetail(d *entity.EvaluationDataset) entity.EvaluationDatasetDetail {
	return entity.EvaluationDatasetDetail{
		ID:            d.ID,
		TrainerID:     d.TrainerID,
		FileName:      d.FileName,
		Format:        d.Format,
		ExampleCount:  d.ExampleCount,
		SizeBytes:     d.SizeBytes,
		MeetsMinimum:  d.ExampleCount >= entity.MinEvaluationExamples,
		MinimumNeeded: entity.MinEvaluationExamples,
		CreatedAt:     d.CreatedAt,
	}
}
