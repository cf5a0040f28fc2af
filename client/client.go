// Package client is a typed HTTP client for the trainer API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"auto_trainer/entity"
	"auto_trainer/pipeline"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API at baseURL (for example
// http://localhost:8080). A nil httpClient gets a default with a timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) ListTrainers(ctx context.Context, limit, offset *int) ([]entity.TrainerDetail, error) {
	query := url.Values{}
	if limit != nil {
		query.Set("limit", strconv.Itoa(*limit))
	}
	if offset != nil {
		query.Set("offset", strconv.Itoa(*offset))
	}
	path := "/v1/trainer"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return doJSON[[]entity.TrainerDetail](ctx, c, http.MethodGet, path, nil)
}

func (c *Client) GetTrainer(ctx context.Context, id string) (entity.TrainerDetailWithConfigs, error) {
	return doJSON[entity.TrainerDetailWithConfigs](ctx, c, http.MethodGet, "/v1/trainer/"+url.PathEscape(id), nil)
}

func (c *Client) CreateTrainer(ctx context.Context, name, description string) (entity.TrainerDetail, error) {
	body := entity.CreateTrainerRequest{Name: name, Description: description}
	return doJSON[entity.TrainerDetail](ctx, c, http.MethodPost, "/v1/trainer", body)
}

// StartTrainer creates and activates a config. It satisfies wizard.Submitter.
func (c *Client) StartTrainer(ctx context.Context, req entity.StartTrainerRequest) (entity.TrainerConfigDetail, error) {
	return doJSON[entity.TrainerConfigDetail](ctx, c, http.MethodPost, "/v1/start-trainer", req)
}

func (c *Client) UpdateTrainerConfig(ctx context.Context, configID string, req entity.UpdateTrainerConfigRequest) (entity.TrainerConfigDetail, error) {
	return doJSON[entity.TrainerConfigDetail](ctx, c, http.MethodPatch, "/v1/trainer-config/"+url.PathEscape(configID), req)
}

func (c *Client) GetPipeline(ctx context.Context, trainerID string) (pipeline.Overview, error) {
	return doJSON[pipeline.Overview](ctx, c, http.MethodGet, "/v1/trainer/"+url.PathEscape(trainerID)+"/pipeline", nil)
}

func (c *Client) ListEvaluationDatasets(ctx context.Context, trainerID string) ([]entity.EvaluationDatasetDetail, error) {
	return doJSON[[]entity.EvaluationDatasetDetail](ctx, c, http.MethodGet, datasetPath(trainerID), nil)
}

// UploadEvaluationDataset sends r as the multipart field "file".
func (c *Client) UploadEvaluationDataset(ctx context.Context, trainerID, fileName string, r io.Reader) (entity.EvaluationDatasetDetail, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("create multipart file failed: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("copy dataset into request failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return entity.EvaluationDatasetDetail{}, fmt.Errorf("close multipart writer failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+datasetPath(trainerID), &buf)
	if err != nil {
		return entity.EvaluationDatasetDetail{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return send[entity.EvaluationDatasetDetail](c, req)
}

func datasetPath(trainerID string) string {
	return "/v1/trainer/" + url.PathEscape(trainerID) + "/evaluation-dataset"
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var zero T
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send[T](c, req)
}

func send[T any](c *Client, req *http.Request) (T, error) {
	var zero T
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var body entity.ErrorResponse
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
		}
		return zero, apiErr
	}

	var envelope entity.Response[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, fmt.Errorf("decode %s %s response failed: %w", req.Method, req.URL.Path, err)
	}
	return envelope.Data, nil
}
