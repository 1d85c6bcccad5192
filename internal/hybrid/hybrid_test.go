package hybrid

import (
	"context"
	"testing"

	"scamguard/internal/rules"
	"scamguard/internal/scam"
)

type stubLLM struct {
	available bool
	result    *scam.Analysis
	calls     int
}

func (s *stubLLM) IsAvailable() bool { return s.available }

func (s *stubLLM) Analyze(_ context.Context, _ string) *scam.Analysis {
	s.calls++
	return s.result
}

func llmVerdict() *scam.Analysis {
	return &scam.Analysis{
		IsScam:           true,
		Confidence:       0.9,
		Reasons:          []string{"원금 보장 언급"},
		DetectedKeywords: []string{},
		DetectionMethod:  scam.MethodLLM,
		ScamType:         scam.TypeInvestment,
		WarningMessage:   "투자 사기 위험이 있습니다.",
		SuspiciousParts:  []string{"원금 보장"},
	}
}

func TestAnalyzeBothPathsEmpty(t *testing.T) {
	d := New(rules.Default(), &stubLLM{available: true})
	got := d.Analyze(context.Background(), "내일 저녁에 만나요")
	if got == nil {
		t.Fatalf("hybrid must always return a verdict")
	}
	if got.IsScam || got.ScamType != scam.TypeSafe {
		t.Fatalf("expected safe verdict, got %+v", got)
	}
}

func TestAnalyzeLLMUnavailableFallsBackToRules(t *testing.T) {
	llm := &stubLLM{available: false, result: llmVerdict()}
	d := New(rules.Default(), llm)
	got := d.Analyze(context.Background(), "지금 투자하면 원금 보장! 긴급하게 입금하세요")
	if got == nil || got.DetectionMethod != scam.MethodRuleBased {
		t.Fatalf("expected rule verdict passthrough, got %+v", got)
	}
	if llm.calls != 0 {
		t.Fatalf("LLM must not be called when unavailable")
	}
}

func TestAnalyzeNilLLM(t *testing.T) {
	d := New(rules.Default(), nil)
	got := d.Analyze(context.Background(), "원금 보장 리딩방 초대")
	if got == nil || got.DetectionMethod != scam.MethodRuleBased {
		t.Fatalf("expected rule verdict, got %+v", got)
	}
}

func TestAnalyzeLLMOnly(t *testing.T) {
	llm := &stubLLM{available: true, result: llmVerdict()}
	d := New(rules.Default(), llm)
	got := d.Analyze(context.Background(), "새로운 기회가 있습니다")
	if got == nil || got.DetectionMethod != scam.MethodLLM {
		t.Fatalf("expected LLM verdict passthrough, got %+v", got)
	}
}

func TestAnalyzeMergesBothPaths(t *testing.T) {
	llm := &stubLLM{available: true, result: llmVerdict()}
	d := New(rules.Default(), llm)
	got := d.Analyze(context.Background(), "지금 투자하면 원금 보장! 긴급하게 입금하세요")
	if got == nil {
		t.Fatalf("expected merged verdict")
	}
	if got.DetectionMethod != scam.MethodHybrid {
		t.Fatalf("expected hybrid provenance, got %v", got.DetectionMethod)
	}
	if !got.IsScam || got.ScamType != scam.TypeInvestment {
		t.Fatalf("unexpected merged verdict: %+v", got)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("expected max confidence 0.9, got %v", got.Confidence)
	}
	if len(got.DetectedKeywords) == 0 {
		t.Fatalf("expected rule keywords preserved in merge")
	}
	if got.WarningMessage != "투자 사기 위험이 있습니다." {
		t.Fatalf("expected LLM warning preferred, got %q", got.WarningMessage)
	}
	if len(got.Reasons) < 2 {
		t.Fatalf("expected reasons from both paths, got %v", got.Reasons)
	}
}

func TestAnalyzeMergeFallsBackToRuleType(t *testing.T) {
	unknown := llmVerdict()
	unknown.ScamType = scam.TypeUnknown
	llm := &stubLLM{available: true, result: unknown}
	d := New(rules.Default(), llm)
	got := d.Analyze(context.Background(), "원금 보장 리딩방")
	if got == nil || got.ScamType != scam.TypeInvestment {
		t.Fatalf("expected rule type when LLM type unknown, got %+v", got)
	}
}
