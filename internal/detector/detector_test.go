package detector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scamguard/internal/llm"
	"scamguard/internal/scam"
)

const modelRelPath = "models/gemma-test.bin"

func testConfig(t *testing.T, withAsset bool) Config {
	t.Helper()
	dataDir := t.TempDir()
	assetDir := t.TempDir()
	if withAsset {
		writeModelAsset(t, assetDir, "model-bytes")
	}
	return Config{
		DataDir:     dataDir,
		AssetDir:    assetDir,
		ModelPath:   modelRelPath,
		MaxTokens:   256,
		Temperature: 0.3,
		TopK:        40,
	}
}

func writeModelAsset(t *testing.T, assetDir, content string) {
	t.Helper()
	path := filepath.Join(assetDir, modelRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
}

func TestLifecycleAvailability(t *testing.T) {
	fake := llm.NewFake("")
	d := New(testConfig(t, true), llm.NewFakeFactory(fake))

	if d.IsAvailable() {
		t.Fatalf("available before initialize")
	}
	if !d.Initialize(context.Background()) {
		t.Fatalf("initialize failed")
	}
	if !d.IsAvailable() {
		t.Fatalf("not available after successful initialize")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if d.IsAvailable() {
		t.Fatalf("available after close")
	}
	if !fake.Closed() {
		t.Fatalf("engine handle not released on close")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	calls := 0
	factory := func(cfg llm.Config) (llm.Engine, error) {
		calls++
		return llm.NewFake(""), nil
	}
	d := New(testConfig(t, true), factory)
	if !d.Initialize(context.Background()) || !d.Initialize(context.Background()) {
		t.Fatalf("initialize failed")
	}
	if calls != 1 {
		t.Fatalf("expected one engine construction, got %d", calls)
	}
}

func TestInitializeMissingAsset(t *testing.T) {
	d := New(testConfig(t, false), llm.NewFakeFactory(llm.NewFake("")))
	if d.Initialize(context.Background()) {
		t.Fatalf("expected initialize to fail without model asset")
	}
	if d.IsAvailable() {
		t.Fatalf("detector available after failed initialize")
	}
	// A later call may succeed once the asset appears.
	writeModelAsset(t, d.cfg.AssetDir, "model-bytes")
	if !d.Initialize(context.Background()) {
		t.Fatalf("retry after asset appeared failed")
	}
}

func TestInitializeCopiesAssetOnce(t *testing.T) {
	cfg := testConfig(t, true)
	d := New(cfg, llm.NewFakeFactory(llm.NewFake("")))
	if !d.Initialize(context.Background()) {
		t.Fatalf("initialize failed")
	}
	copied := filepath.Join(cfg.DataDir, modelRelPath)
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("model not copied into data dir: %v", err)
	}
	if string(data) != "model-bytes" {
		t.Fatalf("copied model content mismatch: %q", data)
	}
	// Second init after close reuses the copied file even without the asset.
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := os.RemoveAll(cfg.AssetDir); err != nil {
		t.Fatalf("remove asset dir: %v", err)
	}
	if !d.Initialize(context.Background()) {
		t.Fatalf("reinitialize from copied model failed")
	}
}

func TestInitializeEngineConstructionFailure(t *testing.T) {
	factory := func(llm.Config) (llm.Engine, error) {
		return nil, errors.New("native load failed")
	}
	d := New(testConfig(t, true), factory)
	if d.Initialize(context.Background()) {
		t.Fatalf("expected initialize false on factory error")
	}
	if d.IsAvailable() {
		t.Fatalf("detector available after factory error")
	}
}

func TestInitializeAsyncSignalsOutcome(t *testing.T) {
	d := New(testConfig(t, true), llm.NewFakeFactory(llm.NewFake("")))
	select {
	case ok := <-d.InitializeAsync(context.Background()):
		if !ok {
			t.Fatalf("async initialize reported failure")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("async initialize did not complete")
	}
	if !d.IsAvailable() {
		t.Fatalf("detector not available after async initialize")
	}
}

func TestAnalyzeUnavailable(t *testing.T) {
	d := New(testConfig(t, true), llm.NewFakeFactory(llm.NewFake("ignored")))
	if got := d.Analyze(context.Background(), "text"); got != nil {
		t.Fatalf("expected nil before initialize, got %+v", got)
	}
	d.Initialize(context.Background())
	d.Close()
	if got := d.Analyze(context.Background(), "text"); got != nil {
		t.Fatalf("expected nil after close, got %+v", got)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	fake := llm.NewFake(`{"isScam":true,"confidence":1.4,"scamType":"투자사기 의심","warningMessage":"투자 사기 위험이 있습니다.","reasons":["원금 보장 언급"],"suspiciousParts":["원금 보장"]}`)
	d := New(testConfig(t, true), llm.NewFakeFactory(fake))
	if !d.Initialize(context.Background()) {
		t.Fatalf("initialize failed")
	}

	text := "지금 투자하면 원금 보장! 긴급하게 입금하세요"
	got := d.Analyze(context.Background(), text)
	if got == nil {
		t.Fatalf("expected analysis, got nil")
	}
	if !got.IsScam || got.Confidence != 1.0 || got.ScamType != scam.TypeInvestment {
		t.Fatalf("unexpected verdict: %+v", got)
	}
	if got.DetectionMethod != scam.MethodLLM || len(got.DetectedKeywords) != 0 {
		t.Fatalf("unexpected provenance: %+v", got)
	}

	prompts := fake.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one generation call, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], `"`+text+`"`) {
		t.Fatalf("prompt missing message text:\n%s", prompts[0])
	}
}

func TestAnalyzeBlankGeneration(t *testing.T) {
	fake := llm.NewFake("   \n")
	d := New(testConfig(t, true), llm.NewFakeFactory(fake))
	d.Initialize(context.Background())
	if got := d.Analyze(context.Background(), "text"); got != nil {
		t.Fatalf("expected nil for blank generation, got %+v", got)
	}
}

func TestAnalyzeGenerationError(t *testing.T) {
	fake := llm.NewFake("")
	fake.Err = errors.New("inference crashed")
	d := New(testConfig(t, true), llm.NewFakeFactory(fake))
	d.Initialize(context.Background())
	if got := d.Analyze(context.Background(), "text"); got != nil {
		t.Fatalf("expected nil on generation error, got %+v", got)
	}
}
