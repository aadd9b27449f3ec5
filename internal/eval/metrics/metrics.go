// Package metrics aggregates classifier evaluation results into
// accuracy, per-class precision/recall, and a confusion matrix.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result is the outcome of classifying one labeled record.
type Result struct {
	ID             string        `yaml:"id"`
	Expected       string        `yaml:"expected"`
	Predicted      string        `yaml:"predicted,omitempty"`
	Confidence     float32       `yaml:"confidence,omitempty"`
	Correct        bool          `yaml:"correct"`
	Error          string        `yaml:"error,omitempty"`
	ProcessingTime time.Duration `yaml:"processing_time"`
}

// ClassStats holds per-label counts and derived rates.
type ClassStats struct {
	Support        int     `yaml:"support"`
	TruePositives  int     `yaml:"true_positives"`
	FalsePositives int     `yaml:"false_positives"`
	FalseNegatives int     `yaml:"false_negatives"`
	Precision      float64 `yaml:"precision"`
	Recall         float64 `yaml:"recall"`
}

// Aggregate is the summary of one evaluation run.
type Aggregate struct {
	TotalRecords int `yaml:"total_records"`
	SuccessCount int `yaml:"success_count"`
	FailureCount int `yaml:"failure_count"`
	CorrectCount int `yaml:"correct_count"`

	Accuracy       float64 `yaml:"accuracy"`
	MeanConfidence float64 `yaml:"mean_confidence"`

	PerClass  map[string]*ClassStats    `yaml:"per_class"`
	Confusion map[string]map[string]int `yaml:"confusion"`

	TotalProcessingTime   time.Duration `yaml:"total_processing_time"`
	AverageProcessingTime time.Duration `yaml:"average_processing_time"`

	EvaluationDate time.Time `yaml:"evaluation_date"`
}

// AggregateResults folds individual results into run-level statistics.
// Failed records count toward FailureCount and nothing else.
func AggregateResults(results []Result) *Aggregate {
	agg := &Aggregate{
		TotalRecords:   len(results),
		PerClass:       make(map[string]*ClassStats),
		Confusion:      make(map[string]map[string]int),
		EvaluationDate: time.Now(),
	}

	classStats := func(label string) *ClassStats {
		if s, ok := agg.PerClass[label]; ok {
			return s
		}
		s := &ClassStats{}
		agg.PerClass[label] = s
		return s
	}

	var confidenceSum float64

	for _, r := range results {
		agg.TotalProcessingTime += r.ProcessingTime

		if r.Error != "" {
			agg.FailureCount++
			continue
		}
		agg.SuccessCount++
		confidenceSum += float64(r.Confidence)

		expected := classStats(r.Expected)
		expected.Support++

		if agg.Confusion[r.Expected] == nil {
			agg.Confusion[r.Expected] = make(map[string]int)
		}
		agg.Confusion[r.Expected][r.Predicted]++

		if r.Correct {
			agg.CorrectCount++
			expected.TruePositives++
		} else {
			expected.FalseNegatives++
			classStats(r.Predicted).FalsePositives++
		}
	}

	if agg.SuccessCount > 0 {
		agg.Accuracy = float64(agg.CorrectCount) / float64(agg.SuccessCount)
		agg.MeanConfidence = confidenceSum / float64(agg.SuccessCount)
		agg.AverageProcessingTime = agg.TotalProcessingTime / time.Duration(agg.SuccessCount+agg.FailureCount)
	}

	for _, stats := range agg.PerClass {
		if tp := stats.TruePositives; tp+stats.FalsePositives > 0 {
			stats.Precision = float64(tp) / float64(tp+stats.FalsePositives)
		}
		if tp := stats.TruePositives; tp+stats.FalseNegatives > 0 {
			stats.Recall = float64(tp) / float64(tp+stats.FalseNegatives)
		}
	}

	return agg
}

// Summary renders a plain-text run summary for the terminal.
func (a *Aggregate) Summary() string {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString("Evaluation Summary\n")
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "Total Records:   %d\n", a.TotalRecords)
	fmt.Fprintf(&b, "Classified:      %d\n", a.SuccessCount)
	fmt.Fprintf(&b, "Failed:          %d\n", a.FailureCount)
	fmt.Fprintf(&b, "Accuracy:        %.2f%%\n", a.Accuracy*100)
	fmt.Fprintf(&b, "Mean Confidence: %.2f%%\n", a.MeanConfidence*100)
	b.WriteString("\nPer-class results:\n")

	labels := make([]string, 0, len(a.PerClass))
	for label := range a.PerClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		s := a.PerClass[label]
		fmt.Fprintf(&b, "  %-16s precision %.2f%%  recall %.2f%%  (n=%d)\n",
			label, s.Precision*100, s.Recall*100, s.Support)
	}
	b.WriteString("========================================")

	return b.String()
}
