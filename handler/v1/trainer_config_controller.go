package v1

import (
	"net/http"
	"time"

	"auto_trainer/entity"
	"auto_trainer/infrastructure/idgen"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
)

type TrainerConfigController struct {
	trainers *service.TrainerService
	now      func() time.Time
}

func NewTrainerConfigController(trainers *service.TrainerService, now func() time.Time) *TrainerConfigController {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TrainerConfigController{trainers: trainers, now: now}
}

// StartTrainer handles POST /v1/start-trainer. The config is created and
// activated in one transaction.
func (c *TrainerConfigController) StartTrainer(ctx *gin.Context) {
	var req entity.StartTrainerRequest
	if err := bindStrictJSON(ctx, &req); err != nil {
		writeHTTPError(ctx, err)
		return
	}
	if !idgen.Valid(idgen.PrefixTrainer, req.TrainerID) {
		writeHTTPError(ctx, validationError("trainerId %q is not a trainer id", req.TrainerID))
		return
	}

	labels, err := entity.ParseLabelsConfig(req.LabelsConfig)
	if err != nil {
		writeHTTPError(ctx, validationError("labelsConfig: %v", err))
		return
	}

	cfg, err := c.trainers.CreateActivatedConfig(ctx.Request.Context(), entity.TrainerConfigInput{
		TrainerID:         req.TrainerID,
		TaskType:          req.TaskType,
		TaskDescription:   req.TaskDescription,
		DomainDescription: req.DomainDescription,
		LabelsConfig:      labels,
		BudgetLimit:       req.BudgetLimit,
	}, c.now())
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, cfg)
}

// UpdateTrainerConfig handles PATCH /v1/trainer-config/:id
func (c *TrainerConfigController) UpdateTrainerConfig(ctx *gin.Context) {
	id, err := pathID(ctx, "id", idgen.PrefixTrainerConfig)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	var req entity.UpdateTrainerConfigRequest
	if err := bindStrictJSON(ctx, &req); err != nil {
		writeHTTPError(ctx, err)
		return
	}

	update, err := c.toUpdate(req)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	cfg, err := c.trainers.UpdateTrainerConfig(ctx.Request.Context(), id, update)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, cfg)
}

func (c *TrainerConfigController) toUpdate(req entity.UpdateTrainerConfigRequest) (entity.TrainerConfigUpdate, error) {
	update := entity.TrainerConfigUpdate{
		RefinedTaskDescription:   req.RefinedTaskDescription,
		RefinedDomainDescription: req.RefinedDomainDescription,
		BudgetLimit:              req.BudgetLimit,
		BudgetUsed:               req.BudgetUsed,
		ActivatedAt:              req.ActivatedAt,
	}
	if req.Activate {
		if req.ActivatedAt != nil {
			return update, validationError("activate and activatedAt are mutually exclusive")
		}
		now := c.now()
		update.ActivatedAt = &now
	}
	if req.RefinedLabelsConfig != nil {
		labels, err := entity.ParseLabelsConfig(*req.RefinedLabelsConfig)
		if err != nil {
			return update, validationError("refinedLabelsConfig: %v", err)
		}
		update.RefinedLabelsConfig = &labels
	}
	return update, nil
}
