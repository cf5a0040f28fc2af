package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"auto_trainer/config"
	"auto_trainer/entity"
	"auto_trainer/infrastructure/idgen"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errInvalidID = errors.New("invalid id")

func handlerLogger() *slog.Logger {
	logger := config.EnsureLoggerInitialized()
	if logger == nil {
		return slog.Default().With("layer", "handler")
	}
	return logger.With("layer", "handler")
}

func writeHTTPError(ctx *gin.Context, err error) {
	logger := handlerLogger().With(
		"method", ctx.Request.Method,
		"path", ctx.FullPath(),
		"request_id", ctx.GetString(RequestIDKey),
	)

	status, code, message := http.StatusInternalServerError, entity.ErrorCodeInternal, "internal server error"
	switch {
	case errors.Is(err, errInvalidID):
		status, code, message = http.StatusBadRequest, entity.ErrorCodeInvalidID, err.Error()
	case errors.Is(err, service.ErrValidation), errors.Is(err, entity.ErrInvalidLabelsConfig):
		status, code, message = http.StatusBadRequest, entity.ErrorCodeValidation, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, code, message = http.StatusNotFound, entity.ErrorCodeNotFound, err.Error()
	case errors.Is(err, service.ErrUnavailable):
		status, code, message = http.StatusServiceUnavailable, entity.ErrorCodeUnavailable, "service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	ctx.AbortWithStatusJSON(status, entity.ErrorResponse{Error: message, Code: code})
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, fmt.Sprintf(format, args...))
}

// bindStrictJSON decodes the request body into obj, rejecting unknown
// properties and trailing data, then runs the binding validators.
func bindStrictJSON(ctx *gin.Context, obj interface{}) error {
	if ctx.Request.Body == nil {
		return validationError("request body is required")
	}
	dec := json.NewDecoder(ctx.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return validationError("request body is required")
		}
		return validationError("%v", err)
	}
	if dec.More() {
		return validationError("unexpected data after JSON body")
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return validationError("%v", err)
	}
	return nil
}

// pathID reads the path parameter name and checks it is a well-formed id
// for prefix.
func pathID(ctx *gin.Context, name, prefix string) (string, error) {
	id := strings.TrimSpace(ctx.Param(name))
	if !idgen.Valid(prefix, id) {
		return "", fmt.Errorf("%w: %q", errInvalidID, id)
	}
	return id, nil
}

func respond[T any](ctx *gin.Context, status int, data T) {
	ctx.JSON(status, entity.Response[T]{Data: data})
}
