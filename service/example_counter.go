package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"auto_trainer/entity"
)

var ErrMalformedDataset = errors.New("malformed evaluation dataset")

const maxJSONLLine = 4 << 20

// CountExamples counts the labelled examples in r: CSV rows after the
// header, elements of a top-level JSON array, or non-blank JSONL lines.
func CountExamples(format string, r io.Reader) (int, error) {
	switch format {
	case entity.DatasetFormatCSV:
		return countCSV(r)
	case entity.DatasetFormatJSON:
		return countJSONArray(r)
	case entity.DatasetFormatJSONL:
		return countJSONL(r)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFileFormat, format)
	}
}

func countCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = true

	rows := 0
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
		}
		rows++
	}
	if rows == 0 {
		return 0, nil
	}
	return rows - 1, nil
}

func countJSONArray(r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("%w: expected a JSON array", ErrMalformedDataset)
	}

	count := 0
	for dec.More() {
		var item json.RawMessage
		if err := dec.Decode(&item); err != nil {
			return 0, fmt.Errorf("%w: element %d: %v", ErrMalformedDataset, count, err)
		}
		count++
	}
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return count, nil
}

func countJSONL(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLLine)

	count, line := 0, 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		if !json.Valid(text) {
			return 0, fmt.Errorf("%w: line %d is not valid JSON", ErrMalformedDataset, line)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return count, nil
}
