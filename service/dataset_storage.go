package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"auto_trainer/entity"

	"github.com/google/uuid"
)

var (
	ErrInvalidUploadFile     = errors.New("invalid upload file")
	ErrUnsupportedFileFormat = errors.New("unsupported evaluation dataset format")
	ErrStorageRootEmpty      = errors.New("storage root is empty")
)

// DatasetStorage keeps uploaded evaluation files on local disk, one
// directory per trainer.
type DatasetStorage struct {
	Root string
}

func NewDatasetStorage(root string) *DatasetStorage {
	return &DatasetStorage{Root: root}
}

// DetectFormat maps a file extension to a dataset format.
func DetectFormat(fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".csv":
		return entity.DatasetFormatCSV, nil
	case ".json":
		return entity.DatasetFormatJSON, nil
	case ".jsonl":
		return entity.DatasetFormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv, .json or .jsonl)", ErrUnsupportedFileFormat, filepath.Ext(fileName))
	}
}

// StoredFileName derives a collision-free name from the uploaded one.
func (s *DatasetStorage) StoredFileName(originalFilename string) (string, error) {
	original := strings.TrimSpace(filepath.Base(originalFilename))
	if original == "" || original == "." || original == string(filepath.Separator) {
		return "", ErrInvalidUploadFile
	}

	ext := strings.ToLower(filepath.Ext(original))
	base := sanitizeFileName(strings.TrimSuffix(original, filepath.Ext(original)))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%s%s", base, suffix, ext), nil
}

// BuildPath returns where a stored file of trainerID lives.
func (s *DatasetStorage) BuildPath(trainerID, storedName string) (string, error) {
	root := strings.TrimSpace(s.Root)
	if root == "" {
		return "", ErrStorageRootEmpty
	}
	name := strings.TrimSpace(filepath.Base(storedName))
	if name == "" || name == "." {
		return "", ErrInvalidUploadFile
	}
	dir := sanitizeFileName(trainerID)
	return filepath.ToSlash(filepath.Join(root, dir, name)), nil
}

// Write copies src to path and returns the number of bytes written. A
// partially written file is removed.
func (s *DatasetStorage) Write(path string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir failed: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create target file failed: %w", err)
	}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("save upload file failed: %w", err)
	}
	return n, nil
}

func (s *DatasetStorage) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceLogger().Warn("remove stored dataset failed", "path", path, "error", err)
	}
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
