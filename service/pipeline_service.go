package service

import (
	"context"

	"auto_trainer/pipeline"
)

type PipelineService struct {
	trainers *TrainerService
	provider pipeline.MetricsProvider
	now      Clock
}

func NewPipelineService(trainers *TrainerService, provider pipeline.MetricsProvider, now Clock) *PipelineService {
	if provider == nil {
		provider = pipeline.PlaceholderMetrics{}
	}
	if now == nil {
		now = utcNow
	}
	return &PipelineService{trainers: trainers, provider: provider, now: now}
}

// Overview builds the pipeline dashboard of one trainer.
func (s *PipelineService) Overview(ctx context.Context, trainerID string) (pipeline.Overview, error) {
	detail, err := s.trainers.GetTrainerDetail(ctx, trainerID)
	if err != nil {
		return pipeline.Overview{}, err
	}
	return pipeline.Build(ctx, detail, s.now(), s.provider)
}
