package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/radgen/radgen/internal/classifier"
	"github.com/radgen/radgen/internal/config"
	"github.com/radgen/radgen/internal/imaging"
	"github.com/radgen/radgen/internal/models"
	"github.com/radgen/radgen/internal/pdf"
	"github.com/radgen/radgen/internal/report"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var pdfOut string
	var provider string
	var providerModel string
	var patientID string
	var age string
	var gender string
	var history string
	var physician string

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a single X-ray image from the command line",
		Long: `Runs the full analysis pipeline on one image file: preprocessing,
classification, report generation, and optionally PDF rendering.`,
		Example: `  # Classify an image and print the report
  radgen analyze xray.png

  # Include patient context and write a PDF
  radgen analyze xray.png --patient-id P-1042 --age 63 --pdf report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if providerModel != "" {
				cfg.ProviderModel = providerModel
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			img, err := imaging.Load(f)
			if err != nil {
				return err
			}
			for _, warning := range img.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
			}

			srv, err := classifier.NewServer(cfg.ModelPath, cfg.MetadataPath)
			if err != nil {
				return err
			}
			defer srv.Close()

			classification, err := srv.Classify(img.Tensor)
			if err != nil {
				return err
			}

			interpretation := models.Interpret(classification.Label)
			fmt.Printf("Condition:   %s\n", classification.Label)
			fmt.Printf("Confidence:  %.1f%% (%s)\n", classification.Confidence*100, models.ConfidenceBand(classification.Confidence))
			fmt.Printf("Urgency:     %s\n", interpretation.Urgency)
			fmt.Printf("Description: %s\n", interpretation.Description)

			reports, err := report.NewService(cfg.Provider, cfg.ProviderModel, true)
			if err != nil {
				return err
			}

			patient := models.PatientInfo{
				PatientID:          patientID,
				Age:                age,
				Gender:             gender,
				ClinicalHistory:    history,
				ReferringPhysician: physician,
			}

			analyzedAt := time.Now()
			text, provider, err := reports.Generate(cmd.Context(), report.Request{
				Classification: *classification,
				Patient:        patient,
				AnalyzedAt:     analyzedAt,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n--- Report (%s) ---\n\n%s\n", provider, text)

			if pdfOut == "" {
				return nil
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to re-read image for PDF: %w", err)
			}

			data, err := pdf.Render(pdf.Document{
				Classification: *classification,
				Patient:        patient,
				ReportText:     text,
				AnalyzedAt:     analyzedAt,
				Image:          raw,
				ImageFormat:    img.Format,
			})
			if err != nil {
				return err
			}

			if err := os.WriteFile(pdfOut, data, 0644); err != nil {
				return fmt.Errorf("failed to write PDF: %w", err)
			}
			fmt.Printf("\nPDF written to: %s\n", pdfOut)

			return nil
		},
	}

	cmd.Flags().StringVar(&pdfOut, "pdf", "", "Write the report as PDF to this path")
	cmd.Flags().StringVar(&provider, "provider", "", "Report provider: gemini, ollama or template (overrides config)")
	cmd.Flags().StringVar(&providerModel, "model", "", "Provider model name (overrides config)")
	cmd.Flags().StringVar(&patientID, "patient-id", "", "Patient identifier for the report")
	cmd.Flags().StringVar(&age, "age", "", "Patient age")
	cmd.Flags().StringVar(&gender, "gender", "", "Patient gender")
	cmd.Flags().StringVar(&history, "history", "", "Clinical history")
	cmd.Flags().StringVar(&physician, "physician", "", "Referring physician")

	return cmd
}
