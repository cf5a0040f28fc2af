package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"auto_trainer/entity"
	"auto_trainer/wizard"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://trainer.test"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(baseURL+"/", httpClient)
}

func TestListTrainers(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/v1/trainer",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "1", req.URL.Query().Get("limit"))
			assert.Empty(t, req.URL.Query().Get("offset"))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"data":[{"id":"trn_a","name":"A","description":"B","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`), nil
		})

	limit := 1
	trainers, err := c.ListTrainers(context.Background(), &limit, nil)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	assert.Equal(t, "trn_a", trainers[0].ID)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGetTrainerNotFound(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/v1/trainer/trn_missing",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error":"trainer not found","code":"not_found"}`))

	_, err := c.GetTrainer(context.Background(), "trn_missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, entity.ErrorCodeNotFound, apiErr.Code)
	assert.Equal(t, "trainer not found", apiErr.Message)
}

func TestStartTrainerSendsBody(t *testing.T) {
	c := newMockedClient(t)
	var got entity.StartTrainerRequest
	httpmock.RegisterResponder("POST", baseURL+"/v1/start-trainer",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewJsonResponse(http.StatusCreated, entity.Response[entity.TrainerConfigDetail]{
				Data: entity.TrainerConfigDetail{ID: "cfg_1", TrainerID: got.TrainerID},
			})
		})

	budget := 10.0
	cfg, err := c.StartTrainer(context.Background(), entity.StartTrainerRequest{
		TrainerID:         "trn_a",
		TaskType:          entity.TaskTypeTextClassification,
		TaskDescription:   "t",
		DomainDescription: "d",
		LabelsConfig:      `{"labels":[],"includeOOS":false}`,
		BudgetLimit:       &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "cfg_1", cfg.ID)
	assert.Equal(t, "trn_a", got.TrainerID)
	require.NotNil(t, got.BudgetLimit)
	assert.Equal(t, 10.0, *got.BudgetLimit)
}

func TestUploadEvaluationDataset(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", baseURL+"/v1/trainer/trn_a/evaluation-dataset",
		func(req *http.Request) (*http.Response, error) {
			file, header, err := req.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "eval.csv", header.Filename)
			assert.Equal(t, "text,label\n", string(content))
			return httpmock.NewStringResponse(http.StatusCreated,
				`{"data":{"id":"eds_1","trainerId":"trn_a","fileName":"eval.csv","format":"csv","exampleCount":0}}`), nil
		})

	detail, err := c.UploadEvaluationDataset(context.Background(), "trn_a", "/tmp/eval.csv", strings.NewReader("text,label\n"))
	require.NoError(t, err)
	assert.Equal(t, "eds_1", detail.ID)
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/v1/trainer/trn_a/pipeline",
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := c.GetPipeline(context.Background(), "trn_a")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

var _ wizard.Submitter = (*Client)(nil)
