package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/radgen/radgen/internal/models"
)

// ErrModelUnavailable indicates the weight or metadata file is missing
// or corrupt, or the inference session could not be created.
var ErrModelUnavailable = errors.New("model unavailable")

// Metadata describes the exported ONNX model: tensor shapes and the
// class labels in output order.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// Server owns the ONNX Runtime session. The session and its tensors
// are created once at startup and reused for every request.
type Server struct {
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	// The input/output tensors are shared across calls, so inference
	// runs are serialized.
	mu sync.Mutex
}

// NewServer loads model metadata, allocates tensors and creates the
// inference session. Every failure maps to ErrModelUnavailable.
func NewServer(modelPath, metadataPath string) (*Server, error) {
	metadata, err := loadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: weight file %s: %v", ErrModelUnavailable, modelPath, err)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime init: %v", ErrModelUnavailable, err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %v", ErrModelUnavailable, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("%w: output tensor: %v", ErrModelUnavailable, err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: session: %v", ErrModelUnavailable, err)
	}

	slog.Info("Model loaded", "path", modelPath, "classes", metadata.Classes)

	return &Server{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func loadMetadata(path string) (Metadata, error) {
	var metadata Metadata

	data, err := os.ReadFile(path)
	if err != nil {
		return metadata, fmt.Errorf("%w: metadata %s: %v", ErrModelUnavailable, path, err)
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, fmt.Errorf("%w: metadata parse: %v", ErrModelUnavailable, err)
	}
	if len(metadata.Classes) == 0 {
		return metadata, fmt.Errorf("%w: metadata lists no classes", ErrModelUnavailable)
	}
	return metadata, nil
}

// Classify runs a single forward pass and returns the predicted label
// with its confidence and the full per-class score map.
func (s *Server) Classify(tensor []float32) (*models.Classification, error) {
	expected := len(s.inputTensor.GetData())
	if len(tensor) != expected {
		return nil, fmt.Errorf("expected %d input values, got %d", expected, len(tensor))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), tensor)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	output := make([]float32, len(s.outputTensor.GetData()))
	copy(output, s.outputTensor.GetData())

	result := Decide(s.Metadata.Classes, output)
	return &result, nil
}

// Close releases the session and its tensors.
func (s *Server) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// Decide maps raw model output to a Classification. Outputs that are
// not already a probability distribution are softmaxed so confidence
// always lands in [0,1].
func Decide(classes []string, output []float32) models.Classification {
	if len(output) > len(classes) {
		output = output[:len(classes)]
	}

	probs := output
	if !isProbabilityVector(output) {
		probs = softmax(output)
	}

	maxIdx := 0
	scores := make(map[string]float32, len(classes))
	for i, p := range probs {
		scores[classes[i]] = p
		if p > probs[maxIdx] {
			maxIdx = i
		}
	}

	return models.Classification{
		Label:      classes[maxIdx],
		Confidence: probs[maxIdx],
		Scores:     scores,
	}
}

func isProbabilityVector(values []float32) bool {
	var sum float64
	for _, v := range values {
		if v < 0 || v > 1 {
			return false
		}
		sum += float64(v)
	}
	return math.Abs(sum-1) < 0.01
}

func softmax(values []float32) []float32 {
	maxVal := values[0]
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	var sum float64
	exps := make([]float64, len(values))
	for i, v := range values {
		exps[i] = math.Exp(float64(v - maxVal))
		sum += exps[i]
	}

	probs := make([]float32, len(values))
	for i := range exps {
		probs[i] = float32(exps[i] / sum)
	}
	return probs
}
