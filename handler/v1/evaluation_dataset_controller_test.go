package v1_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"auto_trainer/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvRows(n int) []byte {
	var b strings.Builder
	b.WriteString("text,label\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "message %d,BILLING\n", i)
	}
	return []byte(b.String())
}

func TestEvaluationDatasetAPI(t *testing.T) {
	r := newTestRouter(t)
	trainer := createTrainer(t, r, "datasets")
	path := "/v1/trainer/" + trainer.ID + "/evaluation-dataset"

	t.Run("Upload Counts Examples", func(t *testing.T) {
		w := performMultipartRequest(t, r, http.MethodPost, path, "file", "eval.csv", csvRows(entity.MinEvaluationExamples))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		detail := decodeData[entity.EvaluationDatasetDetail](t, w)
		assert.Equal(t, "eval.csv", detail.FileName)
		assert.Equal(t, entity.DatasetFormatCSV, detail.Format)
		assert.Equal(t, entity.MinEvaluationExamples, detail.ExampleCount)
		assert.True(t, detail.MeetsMinimum)
		assert.Equal(t, entity.MinEvaluationExamples, detail.MinimumNeeded)
	})

	t.Run("Small Upload Is Flagged", func(t *testing.T) {
		w := performMultipartRequest(t, r, http.MethodPost, path, "file", "small.jsonl", []byte("{\"text\":\"a\"}\n\n{\"text\":\"b\"}\n"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		detail := decodeData[entity.EvaluationDatasetDetail](t, w)
		assert.Equal(t, 2, detail.ExampleCount)
		assert.False(t, detail.MeetsMinimum)
		assert.Equal(t, entity.MinEvaluationExamples, detail.MinimumNeeded)
	})

	t.Run("List Newest First", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		datasets := decodeData[[]entity.EvaluationDatasetDetail](t, w)
		require.Len(t, datasets, 2)
		assert.Equal(t, "small.jsonl", datasets[0].FileName)
		assert.Equal(t, "eval.csv", datasets[1].FileName)
	})

	t.Run("Rejects Bad Uploads", func(t *testing.T) {
		for name, file := range map[string]struct {
			fileName string
			content  string
		}{
			"unsupported format": {"notes.txt", "hello"},
			"empty csv":          {"empty.csv", "text,label\n"},
			"json object":        {"eval.json", `{"text":"a"}`},
			"broken jsonl":       {"eval.jsonl", "{\"text\":\"a\"}\nnot json\n"},
		} {
			t.Run(name, func(t *testing.T) {
				w := performMultipartRequest(t, r, http.MethodPost, path, "file", file.fileName, []byte(file.content))
				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
				assert.Equal(t, entity.ErrorCodeValidation, decodeError(t, w).Code)
			})
		}
	})

	t.Run("Missing File Field", func(t *testing.T) {
		w := performMultipartRequest(t, r, http.MethodPost, path, "upload", "eval.csv", csvRows(1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown Trainer", func(t *testing.T) {
		w := performMultipartRequest(t, r, http.MethodPost, "/v1/trainer/"+missingTrainerID+"/evaluation-dataset", "file", "eval.csv", csvRows(1))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = performRequest(r, http.MethodGet, "/v1/trainer/"+missingTrainerID+"/evaluation-dataset", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
