// Package results persists evaluation runs as YAML files for later inspection.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/radgen/radgen/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// RunConfig captures the settings an evaluation ran with.
type RunConfig struct {
	ModelPath    string `yaml:"model_path"`
	MetadataPath string `yaml:"metadata_path"`
	DatasetPath  string `yaml:"dataset_path"`
	SampleSize   int    `yaml:"sample_size"`
	Workers      int    `yaml:"workers"`
	Timestamp    string `yaml:"timestamp"`
}

// RunSpec is the complete on-disk record of one evaluation run.
type RunSpec struct {
	Config  RunConfig          `yaml:"config"`
	Summary *metrics.Aggregate `yaml:"summary"`
	Results []metrics.Result   `yaml:"results"`
}

// SaveToYAML writes the run to outputDir/eval_results_TIMESTAMP.yaml
// and returns the path it wrote. An empty outputDir defaults to evals/.
func SaveToYAML(outputDir string, cfg RunConfig, summary *metrics.Aggregate, results []metrics.Result) (string, error) {
	if outputDir == "" {
		outputDir = "evals"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	cfg.Timestamp = timestamp

	spec := RunSpec{
		Config:  cfg,
		Summary: summary,
		Results: results,
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(outputDir, fmt.Sprintf("eval_results_%s.yaml", timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}

	return absPath, nil
}
