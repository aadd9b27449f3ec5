package cmd

import (
	"github.com/radgen/radgen/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Classifier evaluation tools",
		Long: `Evaluation tools for measuring classifier accuracy against labeled
chest X-ray datasets.

Supports inspecting parquet or jsonl datasets and running full
evaluations with per-class precision/recall and confusion matrices.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
