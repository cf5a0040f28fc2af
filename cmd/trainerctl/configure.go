package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"auto_trainer/entity"
	"auto_trainer/view"
	"auto_trainer/wizard"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	answersPath string
	datasetPath string
	dryRun      bool
)

// Answers is the YAML file that fills in the configuration wizard.
type Answers struct {
	TaskDefinition    wizard.TaskDefinition     `yaml:"taskDefinition"`
	BudgetTarget      wizard.BudgetTarget       `yaml:"budgetTarget"`
	DatasetEvaluation *wizard.DatasetEvaluation `yaml:"datasetEvaluation"`
}

// trainerAPI is the part of the API client the wizard run needs.
type trainerAPI interface {
	wizard.Submitter
	UploadEvaluationDataset(ctx context.Context, trainerID, fileName string, r io.Reader) (entity.EvaluationDatasetDetail, error)
}

var configureCmd = &cobra.Command{
	Use:   "configure <trainer-id>",
	Short: "Fill in the configuration wizard from a YAML answers file and start training",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(answersPath)
		if err != nil {
			return fmt.Errorf("reading answers file: %w", err)
		}
		answers, err := parseAnswers(data)
		if err != nil {
			return err
		}

		wiz := wizard.New(args[0])
		if err := fillWizard(cmd.Context(), wiz, answers, apiClient, datasetPath); err != nil {
			reportFieldErrors(cmd.ErrOrStderr(), err)
			return err
		}
		if err := view.RenderWizard(cmd.OutOrStdout(), wiz); err != nil {
			return err
		}
		if dryRun {
			req, err := wiz.BuildStartRequest()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), req)
		}

		cfg, err := wiz.Start(cmd.Context(), apiClient)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nStarted config %s for trainer %s\n", cfg.ID, cfg.TrainerID)
		return nil
	},
}

func init() {
	configureCmd.Flags().StringVarP(&answersPath, "answers", "f", "", "YAML answers file")
	configureCmd.Flags().StringVar(&datasetPath, "dataset", "", "evaluation dataset to upload (.csv, .json or .jsonl)")
	configureCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the start request instead of sending it")
	_ = configureCmd.MarkFlagRequired("answers")
}

// parseAnswers decodes an answers file. Budget fields left out keep the
// wizard defaults.
func parseAnswers(data []byte) (Answers, error) {
	answers := Answers{BudgetTarget: wizard.New("").BudgetTargetDraft()}
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return Answers{}, fmt.Errorf("parsing answers file: %w", err)
	}
	return answers, nil
}

// fillWizard walks every section of wiz with answers. A dataset file, when
// given, is uploaded first and its server-side count fills the dataset
// section.
func fillWizard(ctx context.Context, wiz *wizard.Wizard, answers Answers, api trainerAPI, datasetFile string) error {
	if err := wiz.Enter(wizard.SectionTaskDefinition); err != nil {
		return err
	}
	if err := wiz.SaveTaskDefinition(answers.TaskDefinition); err != nil {
		return err
	}

	if err := wiz.Enter(wizard.SectionBudgetTarget); err != nil {
		return err
	}
	if err := wiz.SaveBudgetTarget(answers.BudgetTarget); err != nil {
		return err
	}

	dataset := answers.DatasetEvaluation
	if datasetFile != "" {
		uploaded, err := uploadDataset(ctx, api, wiz.TrainerID(), datasetFile)
		if err != nil {
			return err
		}
		dataset = &uploaded
	}
	if dataset == nil {
		return nil
	}
	if err := wiz.Enter(wizard.SectionDatasetEvaluation); err != nil {
		return err
	}
	return wiz.SaveDatasetEvaluation(*dataset)
}

func uploadDataset(ctx context.Context, api trainerAPI, trainerID, path string) (wizard.DatasetEvaluation, error) {
	f, err := os.Open(path)
	if err != nil {
		return wizard.DatasetEvaluation{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	detail, err := api.UploadEvaluationDataset(ctx, trainerID, filepath.Base(path), f)
	if err != nil {
		return wizard.DatasetEvaluation{}, fmt.Errorf("uploading dataset: %w", err)
	}
	return wizard.DatasetEvaluation{
		FileName:     detail.FileName,
		ExampleCount: detail.ExampleCount,
		DatasetID:    detail.ID,
	}, nil
}

func reportFieldErrors(w io.Writer, err error) {
	var validation *wizard.ValidationError
	if !errors.As(err, &validation) {
		return
	}
	fmt.Fprintf(w, "Section %s is invalid:\n", validation.Section)
	for _, f := range validation.Fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
}
