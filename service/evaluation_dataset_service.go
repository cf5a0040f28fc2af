package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"auto_trainer/dao"
	"auto_trainer/entity"
	"auto_trainer/infrastructure/metrics"

	"gorm.io/gorm"
)

type EvaluationDatasetService struct {
	trainerDAO *dao.TrainerDAO
	datasetDAO *dao.EvaluationDatasetDAO
	storage    *DatasetStorage
	metrics    *metrics.Metrics
	now        Clock
}

func NewEvaluationDatasetService(db *gorm.DB, storage *DatasetStorage, m *metrics.Metrics, now Clock) *EvaluationDatasetService {
	if now == nil {
		now = utcNow
	}
	return &EvaluationDatasetService{
		trainerDAO: dao.NewTrainerDAO(db),
		datasetDAO: dao.NewEvaluationDatasetDAO(db),
		storage:    storage,
		metrics:    m,
		now:        now,
	}
}

// Upload stores an evaluation file for a trainer and records how many
// examples it holds. Files below the minimum are kept and flagged.
func (s *EvaluationDatasetService) Upload(ctx context.Context, trainerID, fileName string, src io.Reader) (entity.EvaluationDatasetDetail, error) {
	logger := serviceLogger().With("func", "Upload", "trainer_id", trainerID)
	if src == nil || strings.TrimSpace(fileName) == "" {
		return entity.EvaluationDatasetDetail{}, validationErrorf("%v", ErrInvalidUploadFile)
	}
	if s.storage == nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("upload evaluation dataset: %w", ErrStorageRootEmpty)
	}

	format, err := DetectFormat(fileName)
	if err != nil {
		return entity.EvaluationDatasetDetail{}, validationErrorf("%v", err)
	}
	if _, err := s.trainerDAO.FindByID(ctx, trainerID); err != nil {
		return entity.EvaluationDatasetDetail{}, classify("upload evaluation dataset", err)
	}

	storedName, err := s.storage.StoredFileName(fileName)
	if err != nil {
		return entity.EvaluationDatasetDetail{}, validationErrorf("%v", err)
	}
	path, err := s.storage.BuildPath(trainerID, storedName)
	if err != nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("upload evaluation dataset: %w", err)
	}
	size, err := s.storage.Write(path, src)
	if err != nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("upload evaluation dataset: %w", err)
	}

	count, err := countStored(format, path)
	if err != nil {
		s.storage.Remove(path)
		if errors.Is(err, ErrMalformedDataset) {
			return entity.EvaluationDatasetDetail{}, validationErrorf("%v", err)
		}
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("upload evaluation dataset: %w", err)
	}
	if count == 0 {
		s.storage.Remove(path)
		return entity.EvaluationDatasetDetail{}, validationErrorf("%s contains no examples", fileName)
	}

	dataset := &entity.EvaluationDataset{
		TrainerID:    trainerID,
		FileName:     strings.TrimSpace(fileName),
		StoredPath:   path,
		Format:       format,
		ExampleCount: count,
		SizeBytes:    size,
		CreatedAt:    s.now(),
	}
	if err := s.datasetDAO.Save(ctx, dataset); err != nil {
		s.storage.Remove(path)
		return entity.EvaluationDatasetDetail{}, classify("upload evaluation dataset", err)
	}

	s.metrics.DatasetUploaded(format)
	logger.Info("evaluation dataset stored", "dataset_id", dataset.ID, "examples", count, "bytes", size)
	return toEvaluationDatasetDetail(dataset), nil
}

// List returns the trainer's evaluation datasets, newest first.
func (s *EvaluationDatasetService) List(ctx context.Context, trainerID string) ([]entity.EvaluationDatasetDetail, error) {
	if _, err := s.trainerDAO.FindByID(ctx, trainerID); err != nil {
		return nil, classify("list evaluation datasets", err)
	}

	datasets, err := s.datasetDAO.FindByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, classify("list evaluation datasets", err)
	}

	details := make([]entity.EvaluationDatasetDetail, 0, len(datasets))
	for i := range datasets {
		details = append(details, toEvaluationDatasetDetail(&datasets[i]))
	}
	return details, nil
}

func countStored(format, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open stored dataset failed: %w", err)
	}
	defer f.Close()
	return CountExamples(format, f)
}
