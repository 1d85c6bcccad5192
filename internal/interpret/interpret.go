// Package interpret turns raw model output into a typed scam analysis.
package interpret

import (
	"encoding/json"
	"strings"

	"scamguard/internal/scam"
)

// rawResponse mirrors the JSON schema requested from the model. It exists
// only during parsing.
type rawResponse struct {
	IsScam          bool     `json:"isScam"`
	Confidence      float64  `json:"confidence"`
	ScamType        string   `json:"scamType"`
	WarningMessage  string   `json:"warningMessage"`
	Reasons         []string `json:"reasons"`
	SuspiciousParts []string `json:"suspiciousParts"`
}

// ExtractObject returns the first '{' .. last '}' span of raw, or "" when no
// such span exists. Known limitation: a '}' in prose after the real object
// extends the span past it, which then fails to decode and drops the verdict.
func ExtractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// Interpret parses raw model output into an Analysis. It returns nil for
// blank input, for input without a JSON object span, and for spans that fail
// to decode. Missing keys fall back to defaults (isScam=false, confidence=0,
// scamType="정상", empty strings and sequences); a structurally invalid object
// still yields nil. Confidence is clamped into [0,1]. No panic escapes.
func Interpret(raw string) (out *scam.Analysis) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return nil
	}

	span := ExtractObject(raw)
	if span == "" {
		return nil
	}

	resp := rawResponse{ScamType: "정상"}
	if err := json.Unmarshal([]byte(span), &resp); err != nil {
		return nil
	}

	reasons := resp.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	parts := resp.SuspiciousParts
	if parts == nil {
		parts = []string{}
	}

	return &scam.Analysis{
		IsScam:           resp.IsScam,
		Confidence:       scam.ClampConfidence(resp.Confidence),
		Reasons:          reasons,
		DetectedKeywords: []string{},
		DetectionMethod:  scam.MethodLLM,
		ScamType:         scam.TypeFromLabel(resp.ScamType),
		WarningMessage:   resp.WarningMessage,
		SuspiciousParts:  parts,
	}
}
