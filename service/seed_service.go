package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"auto_trainer/dao"
	"auto_trainer/entity"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var seedFilePattern = regexp.MustCompile(`^(\d{3})_[^/]+\.ya?ml$`)

// SeedFile is the YAML layout of one seed file.
type SeedFile struct {
	Trainers []SeedTrainer `yaml:"trainers"`
}

type SeedTrainer struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Configs     []SeedConfig `yaml:"configs"`
}

type SeedConfig struct {
	TaskDescription   string              `yaml:"taskDescription"`
	DomainDescription string              `yaml:"domainDescription"`
	LabelsConfig      entity.LabelsConfig `yaml:"labelsConfig"`
	BudgetLimit       *float64            `yaml:"budgetLimit"`
	BudgetUsed        float64             `yaml:"budgetUsed"`
	Activated         bool                `yaml:"activated"`
}

type SeedService struct {
	db  *gorm.DB
	dir string
	now Clock
}

func NewSeedService(db *gorm.DB, dir string, now Clock) *SeedService {
	if now == nil {
		now = utcNow
	}
	return &SeedService{db: db, dir: dir, now: now}
}

// Run applies every seed file newer than the last recorded one, in prefix
// order, inside one transaction. It returns the applied file names.
func (s *SeedService) Run(ctx context.Context) ([]string, error) {
	logger := serviceLogger().With("func", "SeedService.Run", "dir", s.dir)

	files, err := s.seedFiles()
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(files))
	err = dao.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		latest, err := dao.NewSeedingHistoryDAO(tx).Latest(ctx)
		if err != nil {
			return err
		}
		latestPrefix := -1
		if latest != nil {
			latestPrefix = seedPrefix(latest.FileName)
		}

		for i, name := range files {
			if seedPrefix(name) <= latestPrefix {
				logger.Warn("seed file skipped", "file", name)
				continue
			}
			if err := s.apply(ctx, tx, name); err != nil {
				return fmt.Errorf("exec seed %s failed: %w", name, err)
			}
			history := &entity.SeedingHistory{
				FileName:  name,
				CreatedAt: s.now().Add(time.Duration(i) * time.Second),
			}
			if err := dao.NewSeedingHistoryDAO(tx).Save(ctx, history); err != nil {
				return err
			}
			applied = append(applied, name)
		}
		return nil
	})
	if err != nil {
		return nil, classify("seed", err)
	}

	logger.Info("seeding finished", "applied", len(applied))
	return applied, nil
}

func (s *SeedService) seedFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir failed: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !seedFilePattern.MatchString(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.SliceStable(files, func(i, j int) bool {
		return seedPrefix(files[i]) < seedPrefix(files[j])
	})
	return files, nil
}

func (s *SeedService) apply(ctx context.Context, tx *gorm.DB, name string) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file failed: %w", err)
	}

	trainerDAO := dao.NewTrainerDAO(tx)
	configDAO := dao.NewTrainerConfigDAO(tx)
	for _, st := range seed.Trainers {
		now := s.now()
		trainer := &entity.Trainer{
			Name:        st.Name,
			Description: st.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if trainer.Name == "" || trainer.Description == "" {
			return validationErrorf("seed trainer needs name and description")
		}
		if err := trainerDAO.Save(ctx, trainer); err != nil {
			return err
		}

		for _, sc := range st.Configs {
			if err := sc.LabelsConfig.Validate(); err != nil {
				return validationErrorf("trainer %q: %v", st.Name, err)
			}
			cfg := &entity.TrainerConfig{
				TrainerID:         trainer.ID,
				TaskType:          entity.TaskTypeTextClassification,
				TaskDescription:   sc.TaskDescription,
				DomainDescription: sc.DomainDescription,
				LabelsConfig:      sc.LabelsConfig,
				BudgetLimit:       sc.BudgetLimit,
				BudgetUsed:        sc.BudgetUsed,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if sc.Activated {
				activatedAt := now
				cfg.ActivatedAt = &activatedAt
			}
			if err := configDAO.Save(ctx, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedPrefix(name string) int {
	match := seedFilePattern.FindStringSubmatch(filepath.Base(name))
	if match == nil {
		return -1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return -1
	}
	return n
}
