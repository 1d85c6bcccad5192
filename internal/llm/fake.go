package llm

import (
	"context"
	"sync"
)

// Fake is a canned engine for tests and the "fake" provider mode.
type Fake struct {
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
	closed  bool
}

func NewFake(response string) *Fake {
	return &Fake{Response: response}
}

// NewFakeFactory returns a Factory that hands out the given fake for every
// config. The test owns the pointer and can inspect calls afterwards.
func NewFakeFactory(f *Fake) Factory {
	return func(Config) (Engine, error) {
		return f, nil
	}
}

func (f *Fake) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}
