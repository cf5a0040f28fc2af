// Package view renders trainers, the configuration wizard and the pipeline
// overview as plain-text tables.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"auto_trainer/entity"
	"auto_trainer/pipeline"
	"auto_trainer/wizard"
)

const (
	timeLayout     = "2006-01-02 15:04:05"
	maxDescription = 50
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return s
}

func RenderTrainerList(w io.Writer, trainers []entity.TrainerDetail) error {
	if len(trainers) == 0 {
		_, err := fmt.Fprintln(w, "No trainers yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED")
	for _, t := range trainers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			t.ID,
			t.Name,
			truncate(t.Description, maxDescription),
			t.CreatedAt.Local().Format(timeLayout),
		)
	}
	fmt.Fprintf(tw, "\n%d trainers\n", len(trainers))
	return tw.Flush()
}

// RenderTrainerDetail prints the trainer header followed by the pipeline
// overview when a config is active, or the wizard checklist when the trainer
// is still being configured.
func RenderTrainerDetail(ctx context.Context, w io.Writer, detail entity.TrainerDetailWithConfigs, now time.Time, provider pipeline.MetricsProvider) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", detail.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", detail.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", detail.Description)
	fmt.Fprintf(tw, "Created:\t%s\n", detail.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(tw, "Configs:\t%d\n", len(detail.Configs))
	if err := tw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if detail.ActiveConfig == nil {
		return RenderWizard(w, wizard.New(detail.ID))
	}

	overview, err := pipeline.Build(ctx, detail, now, provider)
	if err != nil {
		return err
	}
	return RenderPipeline(w, overview)
}

// RenderWizard prints the section checklist of wiz.
func RenderWizard(w io.Writer, wiz *wizard.Wizard) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Configure trainer %s\n\n", wiz.TrainerID())
	for _, s := range wiz.Sections() {
		mark := "[ ]"
		if s.Completed {
			mark = "[x]"
		}
		title := s.Title
		if s.Optional {
			title += " (optional)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, title, s.Description)
	}
	fmt.Fprintln(tw)

	switch {
	case wiz.Running():
		fmt.Fprintln(tw, "Training is running.")
	case wiz.CanStart():
		fmt.Fprintln(tw, "Ready to start training.")
	default:
		fmt.Fprintln(tw, "Complete the required sections to start training.")
	}
	return tw.Flush()
}

func RenderPipeline(w io.Writer, overview pipeline.Overview) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Status:\t%s\n", overview.Status)
	if overview.ActiveConfigID != nil {
		fmt.Fprintf(tw, "Active config:\t%s\n", *overview.ActiveConfigID)
	}
	if overview.ActivatedAt != nil {
		fmt.Fprintf(tw, "Activated:\t%s\n", overview.ActivatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintf(tw, "Duration:\t%s\n", overview.Duration)
	fmt.Fprintf(tw, "Budget:\t%s\n", formatBudget(overview.Budget))
	if len(overview.Labels) > 0 {
		labels := strings.Join(overview.Labels, ", ")
		if overview.IncludeOOS {
			labels += " (+ out of scope)"
		}
		fmt.Fprintf(tw, "Labels:\t%s\n", labels)
	}

	metrics := overview.Metrics
	if !metrics.Available {
		fmt.Fprintf(tw, "Metrics:\tnot available yet (source: %s)\n", metrics.Source)
		return tw.Flush()
	}

	fmt.Fprintf(tw, "Accuracy:\t%s\n", formatRatio(metrics.Accuracy))
	fmt.Fprintf(tw, "F1:\t%s\n", formatRatio(metrics.F1))
	if len(metrics.PerLabel) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "LABEL\tACCURACY\tF1")
		for _, l := range metrics.PerLabel {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, formatRatio(l.Accuracy), formatRatio(l.F1))
		}
	}
	return tw.Flush()
}

func formatBudget(b pipeline.Budget) string {
	if b.Limit == nil {
		return fmt.Sprintf("$%.2f used (no limit)", b.Used)
	}
	if b.Percentage == nil {
		return fmt.Sprintf("$%.2f / $%.2f", b.Used, *b.Limit)
	}
	return fmt.Sprintf("$%.2f / $%.2f (%.1f%%)", b.Used, *b.Limit, *b.Percentage)
}

func formatRatio(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
