// Package hybrid combines the rule and LLM detection paths.
package hybrid

import (
	"context"

	"scamguard/internal/rules"
	"scamguard/internal/scam"
)

// LLMAnalyzer is the model-backed path. A nil result means no usable verdict;
// availability gates whether the path runs at all.
type LLMAnalyzer interface {
	IsAvailable() bool
	Analyze(ctx context.Context, text string) *scam.Analysis
}

// Detector merges both paths. The LLM analyzer may be nil, in which case only
// rules run.
type Detector struct {
	Rules rules.Rulebook
	LLM   LLMAnalyzer
}

func New(rb rules.Rulebook, llm LLMAnalyzer) *Detector {
	return &Detector{Rules: rb, LLM: llm}
}

// Analyze always returns a verdict: the merged result when both paths
// produce one, the single result when only one does, and an explicit safe
// verdict when neither flags anything.
func (d *Detector) Analyze(ctx context.Context, text string) *scam.Analysis {
	ruleResult := d.Rules.Evaluate(text)

	var llmResult *scam.Analysis
	if d.LLM != nil && d.LLM.IsAvailable() {
		llmResult = d.LLM.Analyze(ctx, text)
	}

	switch {
	case ruleResult == nil && llmResult == nil:
		return safeVerdict()
	case llmResult == nil:
		return ruleResult
	case ruleResult == nil:
		return llmResult
	}
	return merge(ruleResult, llmResult)
}

func merge(rule, llm *scam.Analysis) *scam.Analysis {
	confidence := rule.Confidence
	if llm.Confidence > confidence {
		confidence = llm.Confidence
	}

	scamType := llm.ScamType
	if scamType == scam.TypeUnknown {
		scamType = rule.ScamType
	}

	warning := llm.WarningMessage
	if warning == "" {
		warning = rule.WarningMessage
	}

	reasons := append(append([]string{}, rule.Reasons...), llm.Reasons...)
	parts := append(append([]string{}, rule.SuspiciousParts...), llm.SuspiciousParts...)

	return &scam.Analysis{
		IsScam:           rule.IsScam || llm.IsScam,
		Confidence:       confidence,
		Reasons:          reasons,
		DetectedKeywords: append([]string{}, rule.DetectedKeywords...),
		DetectionMethod:  scam.MethodHybrid,
		ScamType:         scamType,
		WarningMessage:   warning,
		SuspiciousParts:  parts,
	}
}

func safeVerdict() *scam.Analysis {
	return &scam.Analysis{
		IsScam:           false,
		Confidence:       0,
		Reasons:          []string{},
		DetectedKeywords: []string{},
		DetectionMethod:  scam.MethodRuleBased,
		ScamType:         scam.TypeSafe,
		SuspiciousParts:  []string{},
	}
}
