// Package rules is the keyword-based detection path.
package rules

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"scamguard/internal/scam"
)

// Rule is one keyword group tied to a scam category.
type Rule struct {
	ScamType scam.Type `yaml:"scam_type"`
	Keywords []string  `yaml:"keywords"`
	Weight   float64   `yaml:"weight"`
	Warning  string    `yaml:"warning"`
}

// Rulebook is an ordered set of rules plus the scam-flag threshold.
type Rulebook struct {
	Rules     []Rule  `yaml:"rules"`
	Threshold float64 `yaml:"threshold"`
}

// Load reads a rulebook from a yaml file.
func Load(path string) (Rulebook, error) {
	var rb Rulebook
	if path == "" {
		return rb, errors.New("missing rulebook path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rb, err
	}
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return rb, err
	}
	if rb.Threshold <= 0 {
		rb.Threshold = 0.4
	}
	return rb, nil
}

// Default returns the built-in Korean rulebook.
func Default() Rulebook {
	return Rulebook{
		Threshold: 0.4,
		Rules: []Rule{
			{
				ScamType: scam.TypeInvestment,
				Keywords: []string{"원금 보장", "고수익 보장", "리딩방", "수익 보장", "급등주", "코인 추천", "긴급하게 입금"},
				Weight:   0.3,
				Warning:  "투자 사기가 의심됩니다. 원금이나 수익을 보장하는 투자는 없습니다.",
			},
			{
				ScamType: scam.TypeUsedTrade,
				Keywords: []string{"선입금", "직거래 불가", "안전거래 링크", "택배거래만", "외부 링크로 결제"},
				Weight:   0.3,
				Warning:  "중고거래 사기가 의심됩니다. 선입금 요구와 외부 링크 결제를 피하세요.",
			},
			{
				ScamType: scam.TypePhishing,
				Keywords: []string{"계좌 정지", "검찰청", "미납 요금", "본인 인증 필요", "링크를 클릭"},
				Weight:   0.3,
				Warning:  "피싱이 의심됩니다. 출처가 불분명한 링크를 열지 마세요.",
			},
			{
				ScamType: scam.TypeImpersonation,
				Keywords: []string{"엄마 나야", "폰이 고장", "상품권 구매", "휴대폰 액정"},
				Weight:   0.3,
				Warning:  "지인 사칭이 의심됩니다. 본인에게 직접 전화로 확인하세요.",
			},
			{
				ScamType: scam.TypeLoan,
				Keywords: []string{"무담보 대출", "저금리 대출", "당일 대출", "신용등급 상관없이"},
				Weight:   0.3,
				Warning:  "대출 사기가 의심됩니다. 선수수료를 요구하는 대출은 불법입니다.",
			},
		},
	}
}

// Evaluate scans text against every rule and returns a RULE_BASED analysis
// for the best-scoring category, or nil when no keyword matches at all.
func (rb Rulebook) Evaluate(text string) *scam.Analysis {
	var (
		best        Rule
		bestScore   float64
		bestMatches []string
	)

	for _, rule := range rb.Rules {
		var matches []string
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, kw) {
				matches = append(matches, kw)
			}
		}
		if len(matches) == 0 {
			continue
		}
		score := rule.Weight * float64(len(matches))
		if score > 1 {
			score = 1
		}
		if score > bestScore {
			best = rule
			bestScore = score
			bestMatches = matches
		}
	}

	if bestScore == 0 {
		return nil
	}

	threshold := rb.Threshold
	if threshold <= 0 {
		threshold = 0.4
	}
	isScam := bestScore >= threshold

	reasons := make([]string, 0, len(bestMatches))
	for _, kw := range bestMatches {
		reasons = append(reasons, "키워드 매칭: "+kw)
	}

	warning := ""
	if isScam {
		warning = best.Warning
	}

	return &scam.Analysis{
		IsScam:           isScam,
		Confidence:       bestScore,
		Reasons:          reasons,
		DetectedKeywords: bestMatches,
		DetectionMethod:  scam.MethodRuleBased,
		ScamType:         best.ScamType,
		WarningMessage:   warning,
		SuspiciousParts:  bestMatches,
	}
}
