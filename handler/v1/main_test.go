package v1_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"auto_trainer/entity"
	"auto_trainer/infrastructure/cache"
	"auto_trainer/infrastructure/metrics"
	"auto_trainer/internal/testdb"
	"auto_trainer/router"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	testdb.QuietLogs()
	os.Exit(m.Run())
}

// tickingClock returns a time one second later on every call so rows
// created back to back order deterministically.
func tickingClock() service.Clock {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// newTestRouter wires the full API over a fresh in-memory database.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testdb.New(t)
	m := metrics.New()

	detailCache, err := cache.New(cache.DriverMemory, 0, nil)
	require.NoError(t, err)

	clock := tickingClock()
	trainers := service.NewTrainerService(db,
		service.WithDetailCache(detailCache),
		service.WithMetrics(m),
		service.WithClock(clock),
	)
	return router.SetupRouter(router.Deps{
		Trainers:  trainers,
		Pipelines: service.NewPipelineService(trainers, nil, nil),
		Datasets:  service.NewEvaluationDatasetService(db, service.NewDatasetStorage(t.TempDir()), m, clock),
		Metrics:   m,
	})
}

// performRequest sends a JSON request through the router.
func performRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(t *testing.T, r http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return performRequest(r, method, path, body)
}

func performMultipartRequest(t *testing.T, r http.Handler, method, path, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		t.Fatalf("create multipart file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write multipart file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer failed: %v", err)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp entity.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func createTrainer(t *testing.T, r http.Handler, name string) entity.TrainerDetail {
	t.Helper()
	w := performJSON(t, r, http.MethodPost, "/v1/trainer", entity.CreateTrainerRequest{Name: name, Description: name + " description"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[entity.TrainerDetail](t, w)
}

func labelsJSON(t *testing.T) string {
	t.Helper()
	raw, err := entity.LabelsConfig{
		Labels: []entity.Label{
			{Name: "BILLING", Explanation: "payment questions", Examples: "where is my invoice"},
			{Name: "SHIPPING", Explanation: "delivery questions", Examples: "where is my parcel"},
		},
		IncludeOOS: true,
	}.Encode()
	require.NoError(t, err)
	return raw
}

func startTrainer(t *testing.T, r http.Handler, trainerID string) entity.TrainerConfigDetail {
	t.Helper()
	budget := 25.0
	w := performJSON(t, r, http.MethodPost, "/v1/start-trainer", entity.StartTrainerRequest{
		TrainerID:         trainerID,
		TaskType:          entity.TaskTypeTextClassification,
		TaskDescription:   "route support tickets",
		DomainDescription: "customer emails",
		LabelsConfig:      labelsJSON(t),
		BudgetLimit:       &budget,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[entity.TrainerConfigDetail](t, w)
}

const missingTrainerID = "trn_AAAAAAAAAAAAAAAA"
