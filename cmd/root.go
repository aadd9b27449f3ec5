package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "radgen",
		Short: "Chest X-ray analysis tool with LLM-generated radiology reports",
		Long: `Radgen classifies chest X-ray images into COVID-19, Viral Pneumonia,
Lung Opacity, or Normal using a pretrained convolutional model, then
drafts a structured narrative report with an LLM (Gemini or Ollama)
and renders it as a downloadable PDF.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	// Add subcommands
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newAnalyzeCmd(&configPath))
	cmd.AddCommand(newEvalCmd())

	return cmd
}
