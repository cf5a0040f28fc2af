package service

import (
	"context"
	"strings"
	"time"

	"auto_trainer/dao"
	"auto_trainer/entity"
	"auto_trainer/infrastructure/cache"
	"auto_trainer/infrastructure/metrics"

	"gorm.io/gorm"
)

type TrainerService struct {
	db         *gorm.DB
	trainerDAO *dao.TrainerDAO
	configDAO  *dao.TrainerConfigDAO
	cache      cache.DetailCache
	metrics    *metrics.Metrics
	now        Clock
}

type TrainerServiceOption func(*TrainerService)

// WithDetailCache caches trainer details between config mutations.
func WithDetailCache(c cache.DetailCache) TrainerServiceOption {
	return func(s *TrainerService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) TrainerServiceOption {
	return func(s *TrainerService) {
		s.metrics = m
	}
}

func WithClock(now Clock) TrainerServiceOption {
	return func(s *TrainerService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTrainerService(db *gorm.DB, opts ...TrainerServiceOption) *TrainerService {
	s := &TrainerService{
		db:         db,
		trainerDAO: dao.NewTrainerDAO(db),
		configDAO:  dao.NewTrainerConfigDAO(db),
		cache:      cache.NoopCache{},
		now:        utcNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TrainerService) CreateTrainer(ctx context.Context, name, description string) (entity.TrainerDetail, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return entity.TrainerDetail{}, validationErrorf("name is required")
	}
	if description == "" {
		return entity.TrainerDetail{}, validationErrorf("description is required")
	}

	now := s.now()
	trainer := &entity.Trainer{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.trainerDAO.Save(ctx, trainer); err != nil {
		return entity.TrainerDetail{}, classify("create trainer", err)
	}

	s.metrics.TrainerCreated()
	serviceLogger().Info("trainer created", "trainer_id", trainer.ID)
	return toTrainerDetail(trainer), nil
}

// ListTrainers returns trainers newest first. A nil limit returns all.
func (s *TrainerService) ListTrainers(ctx context.Context, opts entity.ListOptions) ([]entity.TrainerDetail, error) {
	if opts.Limit != nil && *opts.Limit < 0 {
		return nil, validationErrorf("limit must be non-negative")
	}
	if opts.Offset != nil && *opts.Offset < 0 {
		return nil, validationErrorf("offset must be non-negative")
	}

	trainers, err := s.trainerDAO.FindAll(ctx, opts)
	if err != nil {
		return nil, classify("list trainers", err)
	}

	details := make([]entity.TrainerDetail, 0, len(trainers))
	for i := range trainers {
		details = append(details, toTrainerDetail(&trainers[i]))
	}
	return details, nil
}

func (s *TrainerService) GetTrainer(ctx context.Context, id string) (entity.TrainerDetail, error) {
	trainer, err := s.trainerDAO.FindByID(ctx, id)
	if err != nil {
		return entity.TrainerDetail{}, classify("get trainer", err)
	}
	return toTrainerDetail(trainer), nil
}

// GetTrainerDetail returns the trainer with its configs (newest first) and
// its active config.
func (s *TrainerService) GetTrainerDetail(ctx context.Context, id string) (entity.TrainerDetailWithConfigs, error) {
	logger := serviceLogger().With("func", "GetTrainerDetail", "trainer_id", id)

	cached, found, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("read trainer detail cache failed", "error", err)
	}
	if found && cached != nil {
		s.metrics.CacheLookup(true)
		return *cached, nil
	}
	s.metrics.CacheLookup(false)

	// read before loading so a mutation committed mid-load wins
	generation, genErr := s.cache.Generation(ctx, id)
	if genErr != nil {
		logger.Warn("read trainer detail cache generation failed", "error", genErr)
	}

	trainer, err := s.trainerDAO.FindByIDWithConfigs(ctx, id)
	if err != nil {
		return entity.TrainerDetailWithConfigs{}, classify("get trainer detail", err)
	}

	detail := toTrainerDetailWithConfigs(trainer)
	if genErr != nil {
		return detail, nil
	}
	stored, err := s.cache.Set(ctx, &detail, generation)
	if err != nil {
		logger.Warn("write trainer detail cache failed", "error", err)
	} else if !stored {
		logger.Debug("trainer detail changed during load, cache not populated")
	}
	return detail, nil
}

// CreateTrainerConfig stores a draft config: no activation, nothing spent.
func (s *TrainerService) CreateTrainerConfig(ctx context.Context, input entity.TrainerConfigInput) (entity.TrainerConfigDetail, error) {
	cfg, err := s.newConfig(input)
	if err != nil {
		return entity.TrainerConfigDetail{}, err
	}

	err = dao.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.trainerDAO.WithTx(tx).FindByID(ctx, cfg.TrainerID); err != nil {
			return err
		}
		return s.configDAO.WithTx(tx).Save(ctx, cfg)
	})
	if err != nil {
		return entity.TrainerConfigDetail{}, classify("create trainer config", err)
	}

	s.invalidate(ctx, cfg.TrainerID)
	s.metrics.ConfigCreated()
	serviceLogger().Info("trainer config created", "trainer_id", cfg.TrainerID, "config_id", cfg.ID)
	return toTrainerConfigDetail(cfg), nil
}

// CreateActivatedConfig stores a config and activates it at activatedAt in a
// single transaction. Either both steps persist or neither does.
func (s *TrainerService) CreateActivatedConfig(ctx context.Context, input entity.TrainerConfigInput, activatedAt time.Time) (entity.TrainerConfigDetail, error) {
	if activatedAt.IsZero() {
		activatedAt = s.now()
	}
	cfg, err := s.newConfig(input)
	if err != nil {
		return entity.TrainerConfigDetail{}, err
	}

	var activated *entity.TrainerConfig
	err = dao.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.trainerDAO.WithTx(tx).FindByID(ctx, cfg.TrainerID); err != nil {
			return err
		}
		configDAO := s.configDAO.WithTx(tx)
		if err := configDAO.Save(ctx, cfg); err != nil {
			return err
		}
		updated, err := configDAO.UpdateByID(ctx, cfg.ID, map[string]interface{}{
			"activated_at": activatedAt,
			"updated_at":   s.now(),
		})
		if err != nil {
			return err
		}
		activated = updated
		return nil
	})
	if err != nil {
		return entity.TrainerConfigDetail{}, classify("create activated trainer config", err)
	}

	s.invalidate(ctx, activated.TrainerID)
	s.metrics.ConfigCreated()
	s.metrics.ConfigActivated()
	serviceLogger().Info("trainer config activated", "trainer_id", activated.TrainerID, "config_id", activated.ID)
	return toTrainerConfigDetail(activated), nil
}

// UpdateTrainerConfig writes only the fields set in update. Setting
// ActivatedAt activates the config.
func (s *TrainerService) UpdateTrainerConfig(ctx context.Context, configID string, update entity.TrainerConfigUpdate) (entity.TrainerConfigDetail, error) {
	updates, err := updateColumns(update)
	if err != nil {
		return entity.TrainerConfigDetail{}, err
	}
	updates["updated_at"] = s.now()

	cfg, err := s.configDAO.UpdateByID(ctx, configID, updates)
	if err != nil {
		return entity.TrainerConfigDetail{}, classify("update trainer config", err)
	}

	s.invalidate(ctx, cfg.TrainerID)
	if update.ActivatedAt != nil {
		s.metrics.ConfigActivated()
	}
	return toTrainerConfigDetail(cfg), nil
}

// ActivateConfig stamps the config's activatedAt with the current time.
func (s *TrainerService) ActivateConfig(ctx context.Context, configID string) (entity.TrainerConfigDetail, error) {
	now := s.now()
	return s.UpdateTrainerConfig(ctx, configID, entity.TrainerConfigUpdate{ActivatedAt: &now})
}

func (s *TrainerService) newConfig(input entity.TrainerConfigInput) (*entity.TrainerConfig, error) {
	if err := validateConfigInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	return &entity.TrainerConfig{
		TrainerID:         strings.TrimSpace(input.TrainerID),
		TaskType:          input.TaskType,
		TaskDescription:   strings.TrimSpace(input.TaskDescription),
		DomainDescription: strings.TrimSpace(input.DomainDescription),
		LabelsConfig:      input.LabelsConfig,
		BudgetLimit:       input.BudgetLimit,
		BudgetUsed:        0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (s *TrainerService) invalidate(ctx context.Context, trainerID string) {
	if err := s.cache.Invalidate(ctx, trainerID); err != nil {
		serviceLogger().Warn("invalidate trainer detail cache failed", "trainer_id", trainerID, "error", err)
	}
}

func validateConfigInput(input entity.TrainerConfigInput) error {
	switch {
	case strings.TrimSpace(input.TrainerID) == "":
		return validationErrorf("trainerId is required")
	case input.TaskType != entity.TaskTypeTextClassification:
		return validationErrorf("unsupported taskType %q", input.TaskType)
	case strings.TrimSpace(input.TaskDescription) == "":
		return validationErrorf("taskDescription is required")
	case strings.TrimSpace(input.DomainDescription) == "":
		return validationErrorf("domainDescription is required")
	case input.BudgetLimit != nil && *input.BudgetLimit < 0:
		return validationErrorf("budgetLimit must be non-negative")
	}
	if err := input.LabelsConfig.Validate(); err != nil {
		return validationErrorf("%v", err)
	}
	return nil
}

func updateColumns(update entity.TrainerConfigUpdate) (map[string]interface{}, error) {
	if update.IsEmpty() {
		return nil, validationErrorf("no fields to update")
	}

	updates := make(map[string]interface{})
	if update.RefinedTaskDescription != nil {
		updates["refined_task_description"] = *update.RefinedTaskDescription
	}
	if update.RefinedDomainDescription != nil {
		updates["refined_domain_description"] = *update.RefinedDomainDescription
	}
	if update.RefinedLabelsConfig != nil {
		if err := update.RefinedLabelsConfig.Validate(); err != nil {
			return nil, validationErrorf("refinedLabelsConfig: %v", err)
		}
		updates["refined_labels_config"] = *update.RefinedLabelsConfig
	}
	if update.BudgetLimit != nil {
		if *update.BudgetLimit < 0 {
			return nil, validationErrorf("budgetLimit must be non-negative")
		}
		updates["budget_limit"] = *update.BudgetLimit
	}
	if update.BudgetUsed != nil {
		if *update.BudgetUsed < 0 {
			return nil, validationErrorf("budgetUsed must be non-negative")
		}
		updates["budget_used"] = *update.BudgetUsed
	}
	if update.ActivatedAt != nil {
		updates["activated_at"] = update.ActivatedAt.UTC()
	}
	return updates, nil
}
