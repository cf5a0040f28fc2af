package view

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"auto_trainer/entity"
	"auto_trainer/pipeline"
	"auto_trainer/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func trainer() entity.TrainerDetail {
	return entity.TrainerDetail{
		ID:          "trn_abc",
		Name:        "Support intents",
		Description: "Routes support tickets",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestRenderTrainerListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTrainerList(&buf, nil))
	assert.Equal(t, "No trainers yet.\n", buf.String())
}

func TestRenderTrainerListTruncatesDescription(t *testing.T) {
	tr := trainer()
	tr.Description = strings.Repeat("x", 80)

	var buf bytes.Buffer
	require.NoError(t, RenderTrainerList(&buf, []entity.TrainerDetail{tr}))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "trn_abc")
	assert.Contains(t, out, strings.Repeat("x", 47)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 48))
	assert.Contains(t, out, "1 trainers")
}

func TestRenderTrainerListTruncatesMultiByteDescription(t *testing.T) {
	tr := trainer()
	tr.Description = strings.Repeat("é", 60)

	var buf bytes.Buffer
	require.NoError(t, RenderTrainerList(&buf, []entity.TrainerDetail{tr}))

	out := buf.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("é", 47)+"...")
	assert.NotContains(t, out, strings.Repeat("é", 48))
}

func TestRenderTrainerDetailWithoutActiveConfigShowsWizard(t *testing.T) {
	detail := entity.TrainerDetailWithConfigs{TrainerDetail: trainer()}

	var buf bytes.Buffer
	require.NoError(t, RenderTrainerDetail(context.Background(), &buf, detail, created.Add(time.Minute), nil))

	out := buf.String()
	assert.Contains(t, out, "Configure trainer trn_abc")
	assert.Contains(t, out, "[ ]  Task Definition")
	assert.Contains(t, out, "Dataset Evaluation Configuration (optional)")
	assert.NotContains(t, out, "Status:")
}

func TestRenderTrainerDetailWithActiveConfigShowsPipeline(t *testing.T) {
	activated := created.Add(time.Minute)
	limit := 10.0
	active := entity.TrainerConfigDetail{
		ID:        "cfg_1",
		TrainerID: "trn_abc",
		LabelsConfig: entity.LabelsConfig{
			Labels:     []entity.Label{{Name: "BILLING"}, {Name: "OTHER"}},
			IncludeOOS: true,
		},
		BudgetLimit: &limit,
		BudgetUsed:  2.5,
		ActivatedAt: &activated,
	}
	detail := entity.TrainerDetailWithConfigs{
		TrainerDetail: trainer(),
		Configs:       []entity.TrainerConfigDetail{active},
		ActiveConfig:  &active,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTrainerDetail(context.Background(), &buf, detail, created.Add(3*time.Minute+7*time.Second), pipeline.PlaceholderMetrics{}))

	out := buf.String()
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "3m 7s")
	assert.Contains(t, out, "$2.50 / $10.00 (25.0%)")
	assert.Contains(t, out, "BILLING, OTHER (+ out of scope)")
	assert.Contains(t, out, "not available yet (source: placeholder)")
	assert.NotContains(t, out, "Configure trainer")
}

func TestRenderWizardStates(t *testing.T) {
	wiz := wizard.New("trn_abc")

	var buf bytes.Buffer
	require.NoError(t, RenderWizard(&buf, wiz))
	assert.Contains(t, buf.String(), "Complete the required sections")

	require.NoError(t, wiz.Enter(wizard.SectionTaskDefinition))
	require.NoError(t, wiz.SaveTaskDefinition(wizard.TaskDefinition{
		ModelPurpose: "route tickets",
		DataType:     "support emails",
		Labels:       []entity.Label{{Name: "billing", Explanation: "money", Examples: "refund"}},
	}))
	require.NoError(t, wiz.Enter(wizard.SectionBudgetTarget))
	require.NoError(t, wiz.SaveBudgetTarget(wizard.BudgetTarget{MaxBudget: 5, AlertAtBudgetUsage: 80}))

	buf.Reset()
	require.NoError(t, RenderWizard(&buf, wiz))
	assert.Contains(t, buf.String(), "[x]  Task Definition")
	assert.Contains(t, buf.String(), "Ready to start training.")
}

func TestRenderPipelineAvailableMetrics(t *testing.T) {
	acc, f1 := 0.91, 0.875
	overview := pipeline.Overview{
		Status:   pipeline.StatusRunning,
		Duration: "42s",
		Budget:   pipeline.BudgetUsage(nil, 1),
		Metrics: pipeline.ModelMetrics{
			Available: true,
			Source:    "eval",
			Accuracy:  &acc,
			F1:        &f1,
			PerLabel:  []pipeline.LabelMetric{{Name: "BILLING", Accuracy: &acc}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPipeline(&buf, overview))

	out := buf.String()
	assert.Contains(t, out, "$1.00 used (no limit)")
	assert.Contains(t, out, "91.0%")
	assert.Contains(t, out, "87.5%")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "BILLING")
}
