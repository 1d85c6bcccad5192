package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Ollama generates text through a local ollama server. The model name is
// derived from the configured model file name, so a path like
// "models/gemma-2b-it.bin" selects the "gemma-2b-it" model.
type Ollama struct {
	BaseURL string
	Model   string
	Opts    Config
	Client  *http.Client
}

// NewOllamaFactory returns a Factory bound to one server URL. Ollama keeps
// connections alive across calls, so Generate has no client-side timeout; a
// hung generation blocks until ctx is cancelled.
func NewOllamaFactory(baseURL string) Factory {
	return func(cfg Config) (Engine, error) {
		return NewOllama(baseURL, cfg)
	}
}

func NewOllama(baseURL string, cfg Config) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := modelNameFromPath(cfg.ModelPath)
	if model == "" {
		return nil, errors.New("ollama: cannot derive model name from empty model path")
	}
	return &Ollama{
		BaseURL: baseURL,
		Model:   model,
		Opts:    cfg,
		Client:  &http.Client{},
	}, nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  o.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": o.Opts.MaxTokens,
			"temperature": o.Opts.Temperature,
			"top_k":       o.Opts.TopK,
		},
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/generate", o.BaseURL), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama generate failed: status %d", resp.StatusCode)
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.Response, nil
}

func (o *Ollama) Close() error {
	o.Client.CloseIdleConnections()
	return nil
}

func modelNameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
