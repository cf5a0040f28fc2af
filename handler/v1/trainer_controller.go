package v1

import (
	"net/http"

	"auto_trainer/entity"
	"auto_trainer/infrastructure/idgen"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
)

type TrainerController struct {
	trainers  *service.TrainerService
	pipelines *service.PipelineService
}

func NewTrainerController(trainers *service.TrainerService, pipelines *service.PipelineService) *TrainerController {
	return &TrainerController{trainers: trainers, pipelines: pipelines}
}

// CreateTrainer handles POST /v1/trainer
func (c *TrainerController) CreateTrainer(ctx *gin.Context) {
	var req entity.CreateTrainerRequest
	if err := bindStrictJSON(ctx, &req); err != nil {
		writeHTTPError(ctx, err)
		return
	}

	trainer, err := c.trainers.CreateTrainer(ctx.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, trainer)
}

// ListTrainers handles GET /v1/trainer
func (c *TrainerController) ListTrainers(ctx *gin.Context) {
	var query entity.TrainerListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		writeHTTPError(ctx, validationError("%v", err))
		return
	}

	trainers, err := c.trainers.ListTrainers(ctx.Request.Context(), entity.ListOptions{
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, trainers)
}

// GetTrainer handles GET /v1/trainer/:id and always answers with the full
// detail: configs plus the active config.
func (c *TrainerController) GetTrainer(ctx *gin.Context) {
	id, err := pathID(ctx, "id", idgen.PrefixTrainer)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	detail, err := c.trainers.GetTrainerDetail(ctx.Request.Context(), id)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, detail)
}

// GetPipeline handles GET /v1/trainer/:id/pipeline
func (c *TrainerController) GetPipeline(ctx *gin.Context) {
	id, err := pathID(ctx, "id", idgen.PrefixTrainer)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	overview, err := c.pipelines.Overview(ctx.Request.Context(), id)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, overview)
}
