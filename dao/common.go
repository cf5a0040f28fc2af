package dao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auto_trainer/config"
	"auto_trainer/entity"

	"gorm.io/gorm"
)

var (
	ErrDBNotInitialized = errors.New("gorm db is not initialized")
	ErrInvalidID        = errors.New("invalid id")
	ErrNilEntity        = errors.New("entity is nil")
	ErrEmptyUpdate      = errors.New("no fields to update")
)

func daoLogger() *slog.Logger {
	logger := config.EnsureLoggerInitialized()
	if logger == nil {
		return slog.Default()
	}
	return logger.With("layer", "dao")
}

// withContext 安全增加上下文，ctx 为 nil 时使用 Background
func withContext(dbConn *gorm.DB, ctx context.Context) (*gorm.DB, error) {
	if dbConn == nil {
		daoLogger().Error("db is nil", "func", "withContext")
		return nil, ErrDBNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return dbConn.WithContext(ctx), nil
}

// Transaction runs fn inside one database transaction. fn must only use tx;
// any error it returns rolls the transaction back.
func Transaction(ctx context.Context, dbConn *gorm.DB, fn func(tx *gorm.DB) error) error {
	conn, err := withContext(dbConn, ctx)
	if err != nil {
		return err
	}
	return conn.Transaction(fn)
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return nil
}

// paginate 应用可选的 offset/limit；limit 为 nil 时不限制条数
func paginate(dbConn *gorm.DB, opts entity.ListOptions) *gorm.DB {
	if opts.Offset != nil && *opts.Offset > 0 {
		dbConn = dbConn.Offset(*opts.Offset)
	}
	if opts.Limit != nil {
		dbConn = dbConn.Limit(*opts.Limit)
	}
	return dbConn
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, gorm.ErrRecordNotFound)
}
