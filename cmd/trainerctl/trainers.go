package main

import (
	"fmt"
	"time"

	"auto_trainer/pipeline"
	"auto_trainer/view"

	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int

	createName        string
	createDescription string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trainers, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var limit, offset *int
		if cmd.Flags().Changed("limit") {
			limit = &listLimit
		}
		if cmd.Flags().Changed("offset") {
			offset = &listOffset
		}

		trainers, err := apiClient.ListTrainers(cmd.Context(), limit, offset)
		if err != nil {
			return fmt.Errorf("listing trainers: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), trainers)
		}
		return view.RenderTrainerList(cmd.OutOrStdout(), trainers)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <trainer-id>",
	Short: "Show a trainer with its pipeline or configuration checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, err := apiClient.GetTrainer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting trainer %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), detail)
		}
		return view.RenderTrainerDetail(cmd.Context(), cmd.OutOrStdout(), detail, time.Now(), pipeline.PlaceholderMetrics{})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a trainer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trainer, err := apiClient.CreateTrainer(cmd.Context(), createName, createDescription)
		if err != nil {
			return fmt.Errorf("creating trainer: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), trainer)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created trainer %s (%s)\n", trainer.ID, trainer.Name)
		return nil
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <trainer-id>",
	Short: "Show the training pipeline overview of a trainer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overview, err := apiClient.GetPipeline(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting pipeline of %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), overview)
		}
		return view.RenderPipeline(cmd.OutOrStdout(), overview)
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of trainers")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of trainers to skip")

	createCmd.Flags().StringVar(&createName, "name", "", "trainer name")
	createCmd.Flags().StringVar(&createDescription, "description", "", "trainer description")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("description")
}
