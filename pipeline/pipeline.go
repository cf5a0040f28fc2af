// Package pipeline derives the training pipeline overview shown for a
// trainer: run status, elapsed time, budget usage and model metrics.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"auto_trainer/entity"
)

const (
	StatusConfiguring = "configuring"
	StatusRunning     = "running"
)

// ModelMetrics are the evaluation figures of the model being trained.
// Available is false until a real source reports numbers.
type ModelMetrics struct {
	Available bool          `json:"available"`
	Source    string        `json:"source"`
	Accuracy  *float64      `json:"accuracy"`
	F1        *float64      `json:"f1"`
	PerLabel  []LabelMetric `json:"perLabel"`
}

type LabelMetric struct {
	Name     string   `json:"name"`
	Accuracy *float64 `json:"accuracy"`
	F1       *float64 `json:"f1"`
}

// MetricsProvider supplies model metrics for a trainer's active config.
type MetricsProvider interface {
	Metrics(ctx context.Context, trainer entity.TrainerDetail, active entity.TrainerConfigDetail) (ModelMetrics, error)
}

// PlaceholderMetrics stands in until training jobs report results. It never
// fabricates numbers; it only lists the configured labels.
type PlaceholderMetrics struct{}

func (PlaceholderMetrics) Metrics(_ context.Context, _ entity.TrainerDetail, active entity.TrainerConfigDetail) (ModelMetrics, error) {
	perLabel := make([]LabelMetric, 0, len(active.LabelsConfig.Labels))
	for _, label := range active.LabelsConfig.Labels {
		perLabel = append(perLabel, LabelMetric{Name: label.Name})
	}
	return ModelMetrics{
		Available: false,
		Source:    "placeholder",
		PerLabel:  perLabel,
	}, nil
}

type Budget struct {
	Limit      *float64 `json:"limit"`
	Used       float64  `json:"used"`
	Percentage *float64 `json:"percentage"`
}

type Overview struct {
	TrainerID       string       `json:"trainerId"`
	Name            string       `json:"name"`
	Status          string       `json:"status"`
	ActiveConfigID  *string      `json:"activeConfigId"`
	ActivatedAt     *time.Time   `json:"activatedAt"`
	DurationSeconds int64        `json:"durationSeconds"`
	Duration        string       `json:"duration"`
	Budget          Budget       `json:"budget"`
	Labels          []string     `json:"labels"`
	IncludeOOS      bool         `json:"includeOOS"`
	Metrics         ModelMetrics `json:"metrics"`
}

// Build derives the overview of detail at now. Without an active config the
// trainer is still configuring and no metrics are requested.
func Build(ctx context.Context, detail entity.TrainerDetailWithConfigs, now time.Time, provider MetricsProvider) (Overview, error) {
	elapsed := now.Sub(detail.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	overview := Overview{
		TrainerID:       detail.ID,
		Name:            detail.Name,
		Status:          StatusConfiguring,
		DurationSeconds: int64(elapsed / time.Second),
		Duration:        FormatDuration(elapsed),
		Labels:          []string{},
		Metrics:         ModelMetrics{Source: "none", PerLabel: []LabelMetric{}},
	}

	active := detail.ActiveConfig
	if active == nil {
		return overview, nil
	}

	configID := active.ID
	overview.Status = StatusRunning
	overview.ActiveConfigID = &configID
	overview.ActivatedAt = active.ActivatedAt
	overview.Budget = BudgetUsage(active.BudgetLimit, active.BudgetUsed)
	overview.IncludeOOS = active.LabelsConfig.IncludeOOS
	for _, label := range active.LabelsConfig.Labels {
		overview.Labels = append(overview.Labels, label.Name)
	}

	if provider == nil {
		provider = PlaceholderMetrics{}
	}
	metrics, err := provider.Metrics(ctx, detail.TrainerDetail, *active)
	if err != nil {
		return Overview{}, fmt.Errorf("load model metrics failed (trainer=%s): %w", detail.ID, err)
	}
	if metrics.PerLabel == nil {
		metrics.PerLabel = []LabelMetric{}
	}
	overview.Metrics = metrics
	return overview, nil
}

// BudgetUsage reports used against limit. Percentage is nil when there is
// no positive limit to measure against.
func BudgetUsage(limit *float64, used float64) Budget {
	budget := Budget{Limit: limit, Used: used}
	if limit != nil && *limit > 0 {
		pct := used / *limit * 100
		budget.Percentage = &pct
	}
	return budget
}

// FormatDuration renders elapsed time as "42s", "3m 7s" or "2h 5m 0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
