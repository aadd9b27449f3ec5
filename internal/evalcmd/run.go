// Package evalcmd implements the eval subcommands for measuring
// classifier accuracy against labeled X-ray datasets.
package evalcmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/radgen/radgen/internal/classifier"
	"github.com/radgen/radgen/internal/eval/dataset"
	"github.com/radgen/radgen/internal/eval/metrics"
	"github.com/radgen/radgen/internal/eval/results"
	"github.com/radgen/radgen/internal/imaging"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the eval run command.
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var modelPath string
	var metadataPath string
	var sampleSize int
	var concurrency int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the classifier against a labeled dataset",
		Long: `Run the chest X-ray classifier against a parquet or jsonl dataset of
labeled images and report accuracy, per-class precision/recall, and a
confusion matrix. Results are saved to evals/ as YAML.`,
		Example: `  # Evaluate 50 records
  radgen eval run --dataset ./data/covid_test.jsonl --sample 50

  # Evaluate a full parquet dataset with 8 workers
  radgen eval run --dataset ./data/covid_test.parquet --sample 0 --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}
			return executeRun(datasetPath, modelPath, metadataPath, outputDir, sampleSize, concurrency)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().StringVar(&modelPath, "model", "models/chest_xray.onnx", "Path to ONNX model weights")
	cmd.Flags().StringVar(&metadataPath, "metadata", "models/chest_xray.json", "Path to model metadata JSON")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of records to evaluate (0 for all)")
	cmd.Flags().IntVar(&concurrency, "workers", 4, "Number of concurrent workers")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for YAML result files")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeRun(datasetPath, modelPath, metadataPath, outputDir string, sampleSize, concurrency int) error {
	slog.Info("Starting evaluation run", "dataset", datasetPath, "model", modelPath)

	loader := dataset.NewLoader(datasetPath)

	var records []dataset.XRayRecord
	var err error
	if sampleSize > 0 {
		records, err = loader.LoadSample(sampleSize)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded", "records", len(records))

	srv, err := classifier.NewServer(modelPath, metadataPath)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}
	defer srv.Close()

	if concurrency < 1 {
		concurrency = 1
	}
	slog.Info("Processing records", "workers", concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan metrics.Result, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.XRayRecord) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing record", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))

			resultsChan <- processRecord(record, loader.BaseDir(), srv)
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	runResults := make([]metrics.Result, 0, len(records))
	for result := range resultsChan {
		runResults = append(runResults, result)
	}

	slog.Info("Calculating summary statistics...")
	summary := metrics.AggregateResults(runResults)

	path, err := results.SaveToYAML(outputDir, results.RunConfig{
		ModelPath:    modelPath,
		MetadataPath: metadataPath,
		DatasetPath:  datasetPath,
		SampleSize:   sampleSize,
		Workers:      concurrency,
	}, summary, runResults)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Println(summary.Summary())
	fmt.Printf("\nResults saved to: %s\n", path)

	return nil
}

func processRecord(record dataset.XRayRecord, baseDir string, srv *classifier.Server) metrics.Result {
	result := metrics.Result{
		ID:       record.ID,
		Expected: record.Label,
	}

	start := time.Now()
	defer func() { result.ProcessingTime = time.Since(start) }()

	raw, err := record.ImageBytes(baseDir)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	img, err := imaging.Load(bytes.NewReader(raw))
	if err != nil {
		result.Error = fmt.Sprintf("failed to decode image: %v", err)
		return result
	}

	classification, err := srv.Classify(img.Tensor)
	if err != nil {
		result.Error = fmt.Sprintf("failed to classify: %v", err)
		return result
	}

	result.Predicted = classification.Label
	result.Confidence = classification.Confidence
	result.Correct = classification.Label == record.Label

	return result
}
