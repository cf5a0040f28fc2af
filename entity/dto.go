package entity

import "time"

// Response wraps every successful API payload.
type Response[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const (
	ErrorCodeValidation  = "validation_error"
	ErrorCodeInvalidID   = "invalid_id"
	ErrorCodeNotFound    = "not_found"
	ErrorCodeUnavailable = "unavailable"
	ErrorCodeInternal    = "internal_error"
)

type TrainerDetail struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TrainerDetailWithConfigs is a trainer together with all of its configs
// (newest first) and the config currently in effect.
type TrainerDetailWithConfigs struct {
	TrainerDetail
	Configs      []TrainerConfigDetail `json:"configs"`
	ActiveConfig *TrainerConfigDetail  `json:"activeConfig"`
}

type TrainerConfigDetail struct {
	ID                       string        `json:"id"`
	TrainerID                string        `json:"trainerId"`
	TaskType                 string        `json:"taskType"`
	TaskDescription          string        `json:"taskDescription"`
	DomainDescription        string        `json:"domainDescription"`
	LabelsConfig             LabelsConfig  `json:"labelsConfig"`
	RefinedTaskDescription   *string       `json:"refinedTaskDescription"`
	RefinedDomainDescription *string       `json:"refinedDomainDescription"`
	RefinedLabelsConfig      *LabelsConfig `json:"refinedLabelsConfig"`
	BudgetLimit              *float64      `json:"budgetLimit"`
	BudgetUsed               float64       `json:"budgetUsed"`
	ActivatedAt              *time.Time    `json:"activatedAt"`
	CreatedAt                time.Time     `json:"createdAt"`
	UpdatedAt                time.Time     `json:"updatedAt"`
}

// IsActive reports whether the config has been activated.
func (c TrainerConfigDetail) IsActive() bool {
	return c.ActivatedAt != nil
}

// Clone returns a copy that shares no pointers or label slices with c.
func (c TrainerConfigDetail) Clone() TrainerConfigDetail {
	out := c
	out.LabelsConfig = c.LabelsConfig.Clone()
	if c.RefinedLabelsConfig != nil {
		refined := c.RefinedLabelsConfig.Clone()
		out.RefinedLabelsConfig = &refined
	}
	out.RefinedTaskDescription = clonePtr(c.RefinedTaskDescription)
	out.RefinedDomainDescription = clonePtr(c.RefinedDomainDescription)
	out.BudgetLimit = clonePtr(c.BudgetLimit)
	out.ActivatedAt = clonePtr(c.ActivatedAt)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type EvaluationDatasetDetail struct {
	ID            string    `json:"id"`
	TrainerID     string    `json:"trainerId"`
	FileName      string    `json:"fileName"`
	Format        string    `json:"format"`
	ExampleCount  int       `json:"exampleCount"`
	SizeBytes     int64     `json:"sizeBytes"`
	MeetsMinimum  bool      `json:"meetsMinimum"`
	MinimumNeeded int       `json:"minimumNeeded"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateTrainerRequest is the body of POST /v1/trainer.
type CreateTrainerRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// TrainerListQuery is the query string of GET /v1/trainer.
type TrainerListQuery struct {
	Limit  *int `form:"limit" binding:"omitempty,min=0"`
	Offset *int `form:"offset" binding:"omitempty,min=0"`
}

// StartTrainerRequest is the body of POST /v1/start-trainer. LabelsConfig
// carries the JSON string form of a LabelsConfig.
type StartTrainerRequest struct {
	TrainerID         string   `json:"trainerId" binding:"required"`
	TaskType          string   `json:"taskType" binding:"required"`
	TaskDescription   string   `json:"taskDescription" binding:"required"`
	DomainDescription string   `json:"domainDescription" binding:"required"`
	LabelsConfig      string   `json:"labelsConfig" binding:"required"`
	BudgetLimit       *float64 `json:"budgetLimit,omitempty" binding:"omitempty,gte=0"`
}

// UpdateTrainerConfigRequest is the body of PATCH /v1/trainer-config/:id.
// Omitted fields are left unchanged; Activate stamps activatedAt with the
// server time.
type UpdateTrainerConfigRequest struct {
	RefinedTaskDescription   *string    `json:"refinedTaskDescription,omitempty"`
	RefinedDomainDescription *string    `json:"refinedDomainDescription,omitempty"`
	RefinedLabelsConfig      *string    `json:"refinedLabelsConfig,omitempty"`
	BudgetLimit              *float64   `json:"budgetLimit,omitempty" binding:"omitempty,gte=0"`
	BudgetUsed               *float64   `json:"budgetUsed,omitempty" binding:"omitempty,gte=0"`
	ActivatedAt              *time.Time `json:"activatedAt,omitempty"`
	Activate                 bool       `json:"activate,omitempty"`
}

// TrainerConfigInput holds the fields of a new draft config.
type TrainerConfigInput struct {
	TrainerID         string
	TaskType          string
	TaskDescription   string
	DomainDescription string
	LabelsConfig      LabelsConfig
	BudgetLimit       *float64
}

// TrainerConfigUpdate holds a partial config update; nil fields are skipped.
type TrainerConfigUpdate struct {
	RefinedTaskDescription   *string
	RefinedDomainDescription *string
	RefinedLabelsConfig      *LabelsConfig
	BudgetLimit              *float64
	BudgetUsed               *float64
	ActivatedAt              *time.Time
}

// IsEmpty reports whether the update carries no field at all.
func (u TrainerConfigUpdate) IsEmpty() bool {
	return u.RefinedTaskDescription == nil &&
		u.RefinedDomainDescription == nil &&
		u.RefinedLabelsConfig == nil &&
		u.BudgetLimit == nil &&
		u.BudgetUsed == nil &&
		u.ActivatedAt == nil
}

// ListOptions paginates trainer listings. A nil Limit returns every row.
type ListOptions struct {
	Limit  *int
	Offset *int
}
