package router

import (
	"net/http"

	v1 "auto_trainer/handler/v1"
	"auto_trainer/infrastructure/metrics"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Trainers  *service.TrainerService
	Pipelines *service.PipelineService
	Datasets  *service.EvaluationDatasetService
	Metrics   *metrics.Metrics
}

func SetupRouter(deps Deps) *gin.Engine {
	trainerController := v1.NewTrainerController(deps.Trainers, deps.Pipelines)
	configController := v1.NewTrainerConfigController(deps.Trainers, nil)
	datasetController := v1.NewEvaluationDatasetController(deps.Datasets)

	r := gin.New()
	r.Use(v1.RequestID(), v1.RequestLogger(), gin.Recovery())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := r.Group("/v1")
	{
		trainers := v1Group.Group("/trainer")
		{
			trainers.POST("", trainerController.CreateTrainer)
			trainers.GET("", trainerController.ListTrainers)
			trainers.GET("/:id", trainerController.GetTrainer)
			trainers.GET("/:id/pipeline", trainerController.GetPipeline)
			trainers.POST("/:id/evaluation-dataset", datasetController.UploadEvaluationDataset)
			trainers.GET("/:id/evaluation-dataset", datasetController.ListEvaluationDatasets)
		}

		v1Group.POST("/start-trainer", configController.StartTrainer)
		v1Group.PATCH("/trainer-config/:id", configController.UpdateTrainerConfig)
	}

	return r
}
