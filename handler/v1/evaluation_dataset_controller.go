package v1

import (
	"net/http"

	"auto_trainer/infrastructure/idgen"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
)

type EvaluationDatasetController struct {
	datasets *service.EvaluationDatasetService
}

func NewEvaluationDatasetController(datasets *service.EvaluationDatasetService) *EvaluationDatasetController {
	return &EvaluationDatasetController{datasets: datasets}
}

// UploadEvaluationDataset handles POST /v1/trainer/:id/evaluation-dataset
func (c *EvaluationDatasetController) UploadEvaluationDataset(ctx *gin.Context) {
	trainerID, err := pathID(ctx, "id", idgen.PrefixTrainer)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		writeHTTPError(ctx, validationError("file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		writeHTTPError(ctx, validationError("open uploaded file: %v", err))
		return
	}
	defer file.Close()

	detail, err := c.datasets.Upload(ctx.Request.Context(), trainerID, header.Filename, file)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, detail)
}

// ListEvaluationDatasets handles GET /v1/trainer/:id/evaluation-dataset
func (c *EvaluationDatasetController) ListEvaluationDatasets(ctx *gin.Context) {
	trainerID, err := pathID(ctx, "id", idgen.PrefixTrainer)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	datasets, err := c.datasets.List(ctx.Request.Context(), trainerID)
	if err != nil {
		writeHTTPError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, datasets)
}
