// Package detector owns the LLM engine lifecycle and the analyze flow.
package detector

import (
	"context"
	"log"
	"strings"
	"sync"

	"scamguard/internal/interpret"
	"scamguard/internal/llm"
	"scamguard/internal/prompt"
	"scamguard/internal/scam"
)

type state int

const (
	stateUninitialized state = iota
	stateReady
	stateClosed
)

// Config locates the model file and fixes the generation parameters.
// ModelPath is relative to both DataDir (writable) and AssetDir (read-only
// bundle the file is copied from on first use).
type Config struct {
	DataDir     string
	AssetDir    string
	ModelPath   string
	MaxTokens   int
	Temperature float64
	TopK        int
}

// Detector holds at most one live engine handle. All public methods absorb
// failures: nothing panics past this boundary, callers get false/nil.
type Detector struct {
	cfg     Config
	factory llm.Factory

	mu     sync.Mutex
	state  state
	engine llm.Engine
}

func New(cfg Config, factory llm.Factory) *Detector {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 40
	}
	return &Detector{cfg: cfg, factory: factory}
}

// Initialize provisions the model file and constructs the engine. Idempotent:
// when already ready it returns true without side effects. Any failure is
// logged and reported as false; the detector stays uninitialized and a later
// call may retry. Re-initialization after Close is allowed.
func (d *Detector) Initialize(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == stateReady && d.engine != nil {
		return true
	}
	if d.factory == nil {
		log.Printf("detector: no engine factory configured")
		return false
	}
	if err := ctx.Err(); err != nil {
		log.Printf("detector: initialize aborted: %v", err)
		return false
	}

	modelFile, err := ensureModelFile(d.cfg.DataDir, d.cfg.AssetDir, d.cfg.ModelPath)
	if err != nil {
		log.Printf("detector: model unavailable: %v", err)
		d.state = stateUninitialized
		return false
	}

	engine, err := d.factory(llm.Config{
		ModelPath:   modelFile,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
		TopK:        d.cfg.TopK,
	})
	if err != nil {
		log.Printf("detector: engine construction failed: %v", err)
		d.state = stateUninitialized
		return false
	}

	d.engine = engine
	d.state = stateReady
	return true
}

// InitializeAsync runs Initialize in the background and reports the one-shot
// outcome on the returned channel, which is closed after the send.
func (d *Detector) InitializeAsync(ctx context.Context) <-chan bool {
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		done <- d.Initialize(ctx)
	}()
	return done
}

// IsAvailable reports whether the engine is ready for Analyze.
func (d *Detector) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateReady && d.engine != nil
}

// Analyze classifies text through the engine. It returns nil immediately when
// the engine is not ready, when generation fails or produces blank output,
// and when the output cannot be interpreted. Calls are serialized per
// detector because the engine may not be reentrant.
func (d *Detector) Analyze(ctx context.Context, text string) *scam.Analysis {
	d.mu.Lock()
	if d.state != stateReady || d.engine == nil {
		d.mu.Unlock()
		return nil
	}
	engine := d.engine
	raw, err := engine.Generate(ctx, prompt.Build(text))
	d.mu.Unlock()

	if err != nil {
		log.Printf("detector: generation failed: %v", err)
		return nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return interpret.Interpret(raw)
}

// Close releases the engine handle. Safe to call repeatedly; a closed
// detector deterministically reports unavailability.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.engine != nil {
		err = d.engine.Close()
		d.engine = nil
	}
	d.state = stateClosed
	return err
}
