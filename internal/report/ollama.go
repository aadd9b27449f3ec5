package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const defaultOllamaModel = "mistral-small3.2:24b"

// Ollama drafts reports through a local or remote Ollama instance.
// When the request carries image bytes and the configured model is
// vision-capable, the image is attached to the generation call.
type Ollama struct {
	host  string
	model string
}

// NewOllama returns an Ollama provider, resolving host and model from
// the environment when not supplied.
func NewOllama(host, model string) *Ollama {
	if host == "" {
		host = os.Getenv("OLLAMA_URL")
	}
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = os.Getenv("OLLAMA_MODEL")
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{host: host, model: model}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) GenerateReport(ctx context.Context, req Request) (string, error) {
	requestBody := map[string]interface{}{
		"model":  o.model,
		"prompt": BuildPrompt(req),
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.2,
		},
	}
	if len(req.Image) > 0 {
		requestBody["images"] = []string{base64.StdEncoding.EncodeToString(req.Image)}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrRemoteService, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.host+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrRemoteService, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: call ollama: %v", ErrRemoteService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s", ErrRemoteService, resp.StatusCode, string(body))
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRemoteService, err)
	}

	if ollamaResp.Response == "" {
		return "", fmt.Errorf("%w: empty response from ollama", ErrRemoteService)
	}

	return ollamaResp.Response, nil
}
