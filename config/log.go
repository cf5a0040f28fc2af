package config

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	AppLogger   *slog.Logger
	loggerInitM sync.Mutex
)

func ensureLogDir(path string) error {
	// path 可能是文件路径（logs/app.log）也可能是目录（logs）
	dir := path
	if filepath.Ext(path) != "" {
		dir = filepath.Dir(path)
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(logPath string, level slog.Level) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = "logs/app.log"
	}

	if err := ensureLogDir(logPath); err != nil {
		fmt.Printf("failed to create log directory: %v\n", err)
		return slog.Default()
	}

	if filepath.Ext(logPath) == "" {
		logPath = filepath.Join(logPath, "app.log")
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	mw := io.MultiWriter(os.Stdout, lumberjackLogger)

	handler := slog.NewTextHandler(mw, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})

	logger := slog.New(handler)

	// 把标准库 log（gorm、gin 的调试输出）也导到同一个 mw
	log.SetOutput(mw)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logger.Info("logger initialized", "path", logPath, "level", level.String())
	return logger
}

func logSettingsFromConfig() (string, slog.Level) {
	if AppConfig == nil {
		return "logs/app.log", slog.LevelInfo
	}
	return strings.TrimSpace(AppConfig.Log.Path), parseLevel(AppConfig.Log.Level)
}

// InitLogger 使用当前配置重新初始化全局日志器。
func InitLogger() *slog.Logger {
	loggerInitM.Lock()
	defer loggerInitM.Unlock()

	AppLogger = buildLogger(logSettingsFromConfig())
	return AppLogger
}

// EnsureLoggerInitialized 确保全局日志器可用；若未初始化则按当前配置初始化。
func EnsureLoggerInitialized() *slog.Logger {
	loggerInitM.Lock()
	defer loggerInitM.Unlock()

	if AppLogger != nil {
		return AppLogger
	}
	AppLogger = buildLogger(logSettingsFromConfig())
	return AppLogger
}

// UseLogger installs logger as the global logger. Tests use it to keep log
// output off disk.
func UseLogger(logger *slog.Logger) {
	loggerInitM.Lock()
	defer loggerInitM.Unlock()

	AppLogger = logger
}
