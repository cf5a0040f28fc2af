// Package wizard is the trainer configuration flow: a section list the user
// enters and leaves, per-section validated data, and a final submission that
// activates the collected configuration.
//
// A Wizard is owned by one caller and is not safe for concurrent use.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"auto_trainer/entity"
)

type Section string

const (
	SectionList              Section = "list"
	SectionTaskDefinition    Section = "task-definition"
	SectionBudgetTarget      Section = "budget-target"
	SectionDatasetEvaluation Section = "dataset-evaluation"
)

const (
	DefaultMaxBudget          = 10.0
	DefaultAlertAtBudgetUsage = 80.0
)

var (
	ErrWizardRunning  = errors.New("trainer is already running")
	ErrUnknownSection = errors.New("unknown wizard section")
	ErrNotInSection   = errors.New("section is not open")
	ErrIncomplete     = errors.New("required sections are not completed")
	ErrInvalidSection = errors.New("invalid section data")
)

type TaskDefinition struct {
	TaskType     string         `json:"taskType" yaml:"taskType"`
	ModelPurpose string         `json:"modelPurpose" yaml:"modelPurpose"`
	DataType     string         `json:"dataType" yaml:"dataType"`
	Labels       []entity.Label `json:"labels" yaml:"labels"`
	IncludeOOS   bool           `json:"includeOOS" yaml:"includeOOS"`
}

// BudgetTarget carries the spending cap and optional quality targets.
type BudgetTarget struct {
	MaxBudget          float64  `json:"maxBudget" yaml:"maxBudget"`
	AlertAtBudgetUsage float64  `json:"alertAtBudgetUsage" yaml:"alertAtBudgetUsage"`
	TargetAccuracy     *float64 `json:"targetAccuracy,omitempty" yaml:"targetAccuracy,omitempty"`
	TargetF1           *float64 `json:"targetF1,omitempty" yaml:"targetF1,omitempty"`
}

type DatasetEvaluation struct {
	FileName     string `json:"fileName" yaml:"fileName"`
	ExampleCount int    `json:"exampleCount" yaml:"exampleCount"`
	DatasetID    string `json:"datasetId,omitempty" yaml:"datasetId,omitempty"`
}

// Data is everything saved so far. A nil section has not been completed.
type Data struct {
	TaskDefinition    *TaskDefinition    `json:"taskDefinition,omitempty"`
	BudgetTarget      *BudgetTarget      `json:"budgetTarget,omitempty"`
	DatasetEvaluation *DatasetEvaluation `json:"datasetEvaluation,omitempty"`
}

type SectionStatus struct {
	ID          Section `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Optional    bool    `json:"optional"`
}

// Submitter sends the assembled configuration to the API.
type Submitter interface {
	StartTrainer(ctx context.Context, req entity.StartTrainerRequest) (entity.TrainerConfigDetail, error)
}

type Wizard struct {
	trainerID string
	current   Section
	data      Data
	running   bool
	started   *entity.TrainerConfigDetail
}

func New(trainerID string) *Wizard {
	return &Wizard{trainerID: trainerID, current: SectionList}
}

func (w *Wizard) TrainerID() string {
	return w.trainerID
}

func (w *Wizard) Current() Section {
	return w.current
}

func (w *Wizard) Running() bool {
	return w.running
}

// Started returns the activated config once Start succeeded.
func (w *Wizard) Started() *entity.TrainerConfigDetail {
	return w.started
}

func (w *Wizard) Data() Data {
	return w.data
}

// Enter opens a section from the list.
func (w *Wizard) Enter(section Section) error {
	if w.running {
		return ErrWizardRunning
	}
	switch section {
	case SectionTaskDefinition, SectionBudgetTarget, SectionDatasetEvaluation:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if w.current != SectionList {
		return fmt.Errorf("cannot enter %s while %s is open", section, w.current)
	}
	w.current = section
	return nil
}

// Back leaves the open section without saving.
func (w *Wizard) Back() error {
	if w.running {
		return ErrWizardRunning
	}
	w.current = SectionList
	return nil
}

// TaskDefinitionDraft returns the saved task definition or the form defaults.
func (w *Wizard) TaskDefinitionDraft() TaskDefinition {
	if w.data.TaskDefinition != nil {
		return cloneTaskDefinition(*w.data.TaskDefinition)
	}
	return TaskDefinition{TaskType: entity.TaskTypeTextClassification, Labels: []entity.Label{}}
}

func (w *Wizard) BudgetTargetDraft() BudgetTarget {
	if w.data.BudgetTarget != nil {
		return *w.data.BudgetTarget
	}
	return BudgetTarget{MaxBudget: DefaultMaxBudget, AlertAtBudgetUsage: DefaultAlertAtBudgetUsage}
}

func (w *Wizard) DatasetEvaluationDraft() DatasetEvaluation {
	if w.data.DatasetEvaluation != nil {
		return *w.data.DatasetEvaluation
	}
	return DatasetEvaluation{}
}

// SaveTaskDefinition validates and stores the task section, then returns to
// the list. Label names are stored upper case. On failure the section stays
// open and nothing is stored.
func (w *Wizard) SaveTaskDefinition(td TaskDefinition) error {
	if err := w.checkOpen(SectionTaskDefinition); err != nil {
		return err
	}
	normalized := normalizeTaskDefinition(td)
	if err := validateTaskDefinition(normalized); err != nil {
		return err
	}
	w.data.TaskDefinition = &normalized
	w.current = SectionList
	return nil
}

func (w *Wizard) SaveBudgetTarget(bt BudgetTarget) error {
	if err := w.checkOpen(SectionBudgetTarget); err != nil {
		return err
	}
	if err := validateBudgetTarget(bt); err != nil {
		return err
	}
	w.data.BudgetTarget = &bt
	w.current = SectionList
	return nil
}

func (w *Wizard) SaveDatasetEvaluation(de DatasetEvaluation) error {
	if err := w.checkOpen(SectionDatasetEvaluation); err != nil {
		return err
	}
	de.FileName = strings.TrimSpace(de.FileName)
	if err := validateDatasetEvaluation(de); err != nil {
		return err
	}
	w.data.DatasetEvaluation = &de
	w.current = SectionList
	return nil
}

func (w *Wizard) Sections() []SectionStatus {
	return []SectionStatus{
		{
			ID:          SectionTaskDefinition,
			Title:       "Task Definition",
			Description: "Define task type, model purpose, and labels",
			Completed:   w.data.TaskDefinition != nil,
		},
		{
			ID:          SectionBudgetTarget,
			Title:       "Budget & Target Configuration",
			Description: "Set target metrics and budget limits",
			Completed:   w.data.BudgetTarget != nil,
		},
		{
			ID:          SectionDatasetEvaluation,
			Title:       "Dataset Evaluation Configuration",
			Description: "Upload custom evaluation dataset (optional - can be added later)",
			Completed:   w.data.DatasetEvaluation != nil,
			Optional:    true,
		},
	}
}

// CanStart reports whether every required section is completed.
func (w *Wizard) CanStart() bool {
	if w.running {
		return false
	}
	for _, s := range w.Sections() {
		if !s.Optional && !s.Completed {
			return false
		}
	}
	return true
}

// BuildStartRequest packs the collected data into the start-trainer body.
func (w *Wizard) BuildStartRequest() (entity.StartTrainerRequest, error) {
	if !w.CanStart() {
		if w.running {
			return entity.StartTrainerRequest{}, ErrWizardRunning
		}
		return entity.StartTrainerRequest{}, ErrIncomplete
	}

	td := w.data.TaskDefinition
	labelsConfig, err := entity.LabelsConfig{Labels: td.Labels, IncludeOOS: td.IncludeOOS}.Encode()
	if err != nil {
		return entity.StartTrainerRequest{}, err
	}
	budget := w.data.BudgetTarget.MaxBudget
	return entity.StartTrainerRequest{
		TrainerID:         w.trainerID,
		TaskType:          td.TaskType,
		TaskDescription:   td.ModelPurpose,
		DomainDescription: td.DataType,
		LabelsConfig:      labelsConfig,
		BudgetLimit:       &budget,
	}, nil
}

// Start submits the configuration. On success the wizard is running and
// accepts no further changes; on failure it is left as it was.
func (w *Wizard) Start(ctx context.Context, submitter Submitter) (entity.TrainerConfigDetail, error) {
	req, err := w.BuildStartRequest()
	if err != nil {
		return entity.TrainerConfigDetail{}, err
	}
	cfg, err := submitter.StartTrainer(ctx, req)
	if err != nil {
		return entity.TrainerConfigDetail{}, fmt.Errorf("start trainer %s failed: %w", w.trainerID, err)
	}
	w.running = true
	w.current = SectionList
	w.started = &cfg
	return cfg, nil
}

func (w *Wizard) checkOpen(section Section) error {
	if w.running {
		return ErrWizardRunning
	}
	if w.current != section {
		return fmt.Errorf("%w: %s", ErrNotInSection, section)
	}
	return nil
}

func cloneTaskDefinition(td TaskDefinition) TaskDefinition {
	td.Labels = append([]entity.Label(nil), td.Labels...)
	return td
}

func normalizeTaskDefinition(td TaskDefinition) TaskDefinition {
	td = cloneTaskDefinition(td)
	td.TaskType = strings.TrimSpace(td.TaskType)
	if td.TaskType == "" {
		td.TaskType = entity.TaskTypeTextClassification
	}
	td.ModelPurpose = strings.TrimSpace(td.ModelPurpose)
	td.DataType = strings.TrimSpace(td.DataType)
	for i := range td.Labels {
		td.Labels[i].Name = strings.ToUpper(strings.TrimSpace(td.Labels[i].Name))
		td.Labels[i].Explanation = strings.TrimSpace(td.Labels[i].Explanation)
		td.Labels[i].Examples = strings.TrimSpace(td.Labels[i].Examples)
	}
	return td
}

func validateTaskDefinition(td TaskDefinition) error {
	var errs fieldErrors
	if td.TaskType != entity.TaskTypeTextClassification {
		errs.add("taskType", "unsupported task type %q", td.TaskType)
	}
	if td.ModelPurpose == "" {
		errs.add("modelPurpose", "Model purpose is required")
	}
	if td.DataType == "" {
		errs.add("dataType", "Data type description is required")
	}
	if len(td.Labels) == 0 {
		errs.add("labels", "At least one label is required")
	}
	seen := make(map[string]int, len(td.Labels))
	for i, label := range td.Labels {
		prefix := fmt.Sprintf("labels[%d]", i)
		if label.Name == "" {
			errs.add(prefix+".name", "Label name is required")
		} else if first, dup := seen[label.Name]; dup {
			errs.add(prefix+".name", "duplicates labels[%d]", first)
		} else {
			seen[label.Name] = i
		}
		if label.Explanation == "" {
			errs.add(prefix+".explanation", "Explanation is required")
		}
		if label.Examples == "" {
			errs.add(prefix+".examples", "Examples are required")
		}
	}
	return errs.err(SectionTaskDefinition)
}

func validateBudgetTarget(bt BudgetTarget) error {
	var errs fieldErrors
	if math.IsNaN(bt.MaxBudget) || math.IsInf(bt.MaxBudget, 0) || bt.MaxBudget <= 0 {
		errs.add("maxBudget", "Budget must be greater than 0")
	}
	if math.IsNaN(bt.AlertAtBudgetUsage) || bt.AlertAtBudgetUsage < 1 || bt.AlertAtBudgetUsage > 100 {
		errs.add("alertAtBudgetUsage", "Must be between 1 and 100")
	}
	checkRatio := func(field string, v *float64) {
		if v != nil && (math.IsNaN(*v) || *v <= 0 || *v > 1) {
			errs.add(field, "Must be greater than 0 and at most 1")
		}
	}
	checkRatio("targetAccuracy", bt.TargetAccuracy)
	checkRatio("targetF1", bt.TargetF1)
	return errs.err(SectionBudgetTarget)
}

func validateDatasetEvaluation(de DatasetEvaluation) error {
	var errs fieldErrors
	if de.FileName == "" {
		errs.add("datasetFileName", "Dataset file is required")
	}
	if de.ExampleCount < entity.MinEvaluationExamples {
		errs.add("exampleCount", "Minimum %d evaluation examples required", entity.MinEvaluationExamples)
	}
	return errs.err(SectionDatasetEvaluation)
}
