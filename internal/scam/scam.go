package scam

import "strings"

// Type is the closed set of scam categories.
type Type string

const (
	TypeInvestment    Type = "investment"
	TypeUsedTrade     Type = "used_trade"
	TypePhishing      Type = "phishing"
	TypeImpersonation Type = "impersonation"
	TypeRomance       Type = "romance"
	TypeLoan          Type = "loan"
	TypeSafe          Type = "safe"
	TypeUnknown       Type = "unknown"
)

// Method records which detection path produced an analysis.
type Method string

const (
	MethodRuleBased Method = "rule_based"
	MethodLLM       Method = "llm"
	MethodHybrid    Method = "hybrid"
)

// Analysis is the verdict for one message. Treated as immutable once built.
type Analysis struct {
	IsScam           bool     `json:"is_scam"`
	Confidence       float64  `json:"confidence"`
	Reasons          []string `json:"reasons"`
	DetectedKeywords []string `json:"detected_keywords"`
	DetectionMethod  Method   `json:"detection_method"`
	ScamType         Type     `json:"scam_type"`
	WarningMessage   string   `json:"warning_message"`
	SuspiciousParts  []string `json:"suspicious_parts"`
}

// LabelRule maps free-text category labels from the model to a Type.
type LabelRule struct {
	Substrings []string
	Type       Type
}

// LabelRules is evaluated top to bottom, first match wins. The ordering is
// part of the contract: a label containing both "투자" and "정상" resolves to
// TypeInvestment because "투자" is checked first.
var LabelRules = []LabelRule{
	{[]string{"투자"}, TypeInvestment},
	{[]string{"중고", "거래"}, TypeUsedTrade},
	{[]string{"피싱"}, TypePhishing},
	{[]string{"사칭"}, TypeImpersonation},
	{[]string{"로맨스"}, TypeRomance},
	{[]string{"대출"}, TypeLoan},
	{[]string{"정상"}, TypeSafe},
}

// TypeFromLabel resolves a free-text scam type label to the closed enum.
// Unmatched labels map to TypeUnknown.
func TypeFromLabel(label string) Type {
	for _, rule := range LabelRules {
		for _, sub := range rule.Substrings {
			if strings.Contains(label, sub) {
				return rule.Type
			}
		}
	}
	return TypeUnknown
}

// ClampConfidence forces a model-reported confidence into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
