package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLabels() LabelsConfig {
	return LabelsConfig{
		Labels: []Label{
			{Name: "PAYMENT", Explanation: "wants to pay", Examples: "pay my bill"},
			{Name: "OTHER", Explanation: "anything else", Examples: "hello"},
		},
		IncludeOOS: true,
	}
}

func TestLabelsConfigRoundTrip(t *testing.T) {
	raw, err := sampleLabels().Encode()
	require.NoError(t, err)

	parsed, err := ParseLabelsConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleLabels(), parsed)
}

func TestParseLabelsConfigRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"not json", "labels"},
		{"array instead of object", `[]`},
		{"missing labels", `{"includeOOS": false}`},
		{"missing includeOOS", `{"labels": [{"name":"A","explanation":"a","examples":"a"}]}`},
		{"empty labels", `{"labels": [], "includeOOS": false}`},
		{"label without name", `{"labels": [{"name":"","explanation":"a","examples":"a"}], "includeOOS": false}`},
		{"label without examples", `{"labels": [{"name":"A","explanation":"a","examples":" "}], "includeOOS": false}`},
		{"unknown field", `{"labels": [{"name":"A","explanation":"a","examples":"a"}], "includeOOS": false, "extra": 1}`},
		{"includeOOS not bool", `{"labels": [{"name":"A","explanation":"a","examples":"a"}], "includeOOS": "yes"}`},
		{"trailing data", `{"labels": [{"name":"A","explanation":"a","examples":"a"}], "includeOOS": false} {}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLabelsConfig(tc.raw)
			assert.ErrorIs(t, err, ErrInvalidLabelsConfig)
		})
	}
}

func TestLabelsConfigValueAndScan(t *testing.T) {
	value, err := sampleLabels().Value()
	require.NoError(t, err)

	var fromString LabelsConfig
	require.NoError(t, fromString.Scan(value))
	assert.Equal(t, sampleLabels(), fromString)

	var fromBytes LabelsConfig
	require.NoError(t, fromBytes.Scan([]byte(value.(string))))
	assert.Equal(t, sampleLabels(), fromBytes)

	var fromNil LabelsConfig
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil.Labels)

	var bad LabelsConfig
	assert.Error(t, bad.Scan(42))
}

func TestLabelsConfigValueNeverNullLabels(t *testing.T) {
	value, err := LabelsConfig{}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels": [], "includeOOS": false}`, value.(string))
}

func TestTrainerConfigUpdateIsEmpty(t *testing.T) {
	assert.True(t, TrainerConfigUpdate{}.IsEmpty())
	used := 1.5
	assert.False(t, TrainerConfigUpdate{BudgetUsed: &used}.IsEmpty())
}

func TestTrainerConfigDetailClone(t *testing.T) {
	activated := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	refined := "route tickets"
	refinedLabels := sampleLabels()
	original := TrainerConfigDetail{
		ID:                     "cfg_a",
		LabelsConfig:           sampleLabels(),
		RefinedTaskDescription: &refined,
		RefinedLabelsConfig:    &refinedLabels,
		ActivatedAt:            &activated,
	}

	clone := original.Clone()
	clone.LabelsConfig.Labels[0].Name = "CHANGED"
	clone.RefinedLabelsConfig.Labels[0].Name = "CHANGED"
	*clone.RefinedTaskDescription = "changed"
	*clone.ActivatedAt = activated.Add(time.Hour)

	assert.Equal(t, "PAYMENT", original.LabelsConfig.Labels[0].Name)
	assert.Equal(t, "PAYMENT", original.RefinedLabelsConfig.Labels[0].Name)
	assert.Equal(t, "route tickets", *original.RefinedTaskDescription)
	assert.True(t, original.ActivatedAt.Equal(activated))
	assert.True(t, original.IsActive())
	assert.False(t, TrainerConfigDetail{}.IsActive())
}
