package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var ErrInvalidLabelsConfig = errors.New("invalid labels config")

type Label struct {
	Name        string `json:"name" yaml:"name"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Examples    string `json:"examples" yaml:"examples"`
}

// LabelsConfig is the label declaration of a text classification task,
// stored as a JSON column.
type LabelsConfig struct {
	Labels     []Label `json:"labels" yaml:"labels"`
	IncludeOOS bool    `json:"includeOOS" yaml:"includeOOS"`
}

// Clone returns a copy with its own labels slice.
func (c LabelsConfig) Clone() LabelsConfig {
	out := c
	if c.Labels != nil {
		out.Labels = make([]Label, len(c.Labels))
		copy(out.Labels, c.Labels)
	}
	return out
}

// Validate requires at least one label with every field filled in.
func (c LabelsConfig) Validate() error {
	if len(c.Labels) == 0 {
		return fmt.Errorf("%w: at least one label is required", ErrInvalidLabelsConfig)
	}
	for i, label := range c.Labels {
		switch {
		case strings.TrimSpace(label.Name) == "":
			return fmt.Errorf("%w: labels[%d].name is required", ErrInvalidLabelsConfig, i)
		case strings.TrimSpace(label.Explanation) == "":
			return fmt.Errorf("%w: labels[%d].explanation is required", ErrInvalidLabelsConfig, i)
		case strings.TrimSpace(label.Examples) == "":
			return fmt.Errorf("%w: labels[%d].examples is required", ErrInvalidLabelsConfig, i)
		}
	}
	return nil
}

// Encode returns the JSON string form sent over the wire in labelsConfig.
func (c LabelsConfig) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode labels config failed: %w", err)
	}
	return string(data), nil
}

type labelsConfigWire struct {
	Labels     []Label `json:"labels"`
	IncludeOOS *bool   `json:"includeOOS"`
}

// ParseLabelsConfig decodes the JSON string form of a labels config. The
// object must carry a labels array and an includeOOS boolean.
func ParseLabelsConfig(raw string) (LabelsConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LabelsConfig{}, fmt.Errorf("%w: empty", ErrInvalidLabelsConfig)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var wire labelsConfigWire
	if err := dec.Decode(&wire); err != nil {
		return LabelsConfig{}, fmt.Errorf("%w: %v", ErrInvalidLabelsConfig, err)
	}
	if dec.More() {
		return LabelsConfig{}, fmt.Errorf("%w: trailing data", ErrInvalidLabelsConfig)
	}
	if wire.Labels == nil {
		return LabelsConfig{}, fmt.Errorf("%w: labels is required", ErrInvalidLabelsConfig)
	}
	if wire.IncludeOOS == nil {
		return LabelsConfig{}, fmt.Errorf("%w: includeOOS is required", ErrInvalidLabelsConfig)
	}

	cfg := LabelsConfig{Labels: wire.Labels, IncludeOOS: *wire.IncludeOOS}
	if err := cfg.Validate(); err != nil {
		return LabelsConfig{}, err
	}
	return cfg, nil
}

func (c LabelsConfig) Value() (driver.Value, error) {
	labels := c.Labels
	if labels == nil {
		labels = []Label{}
	}
	data, err := json.Marshal(LabelsConfig{Labels: labels, IncludeOOS: c.IncludeOOS})
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *LabelsConfig) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = LabelsConfig{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan labels config: unsupported type %T", value)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*c = LabelsConfig{}
		return nil
	}
	return json.Unmarshal(data, c)
}

func (LabelsConfig) GormDataType() string {
	return "json"
}

func (LabelsConfig) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	default:
		return "TEXT"
	}
}
