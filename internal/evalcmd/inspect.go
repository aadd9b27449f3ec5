package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/radgen/radgen/internal/eval/dataset"
	"github.com/radgen/radgen/internal/models"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the eval inspect command.
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset records and label distribution",
		Long: `Inspect records from a parquet or jsonl dataset file.

This command prints each record's label and image source along with a
label histogram, which is useful for spotting class imbalance or
mislabeled records before running an evaluation.`,
		Example: `  # Inspect first 5 records interactively
  radgen eval inspect --dataset ./data/covid_test.jsonl --limit 5 --interactive

  # Inspect all records (no limit)
  radgen eval inspect --dataset ./data/covid_test.parquet --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, datasetPath, limit, interactive)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each record (press Enter to continue)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeInspect(ctx context.Context, datasetPath string, limit int, interactive bool) error {
	loader := dataset.NewLoader(datasetPath)

	var records []dataset.XRayRecord
	var err error
	if limit > 0 {
		records, err = loader.LoadSample(limit)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Printf("Loaded %d records from %s\n", len(records), datasetPath)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	histogram := make(map[string]int)
	reader := bufio.NewReader(os.Stdin)

	for i, record := range records {
		select {
		case <-ctx.Done():
			fmt.Println("\nInspection interrupted.")
			return nil
		default:
		}

		histogram[record.Label]++

		fmt.Printf("RECORD %d/%d\n", i+1, len(records))
		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("ID:     %s\n", record.ID)
		fmt.Printf("Label:  %s", record.Label)
		if !models.IsValidLabel(record.Label) {
			fmt.Printf("  (WARNING: not a recognized condition)")
		}
		fmt.Println()
		if record.ImagePath != "" {
			fmt.Printf("Image:  %s\n", record.ImagePath)
		} else {
			fmt.Printf("Image:  embedded (%d bytes)\n", len(record.Image))
		}
		fmt.Println()

		if interactive && i < len(records)-1 {
			fmt.Print("Press Enter for next record...")
			if _, err := reader.ReadString('\n'); err != nil {
				return nil
			}
			fmt.Println()
		}
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Label distribution:")

	labels := make([]string, 0, len(histogram))
	for label := range histogram {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		fmt.Printf("  %-16s %d\n", label, histogram[label])
	}

	return nil
}
