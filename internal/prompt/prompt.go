// Package prompt builds the instruction prompt sent to the generation engine.
package prompt

import "strings"

// template embeds the message verbatim. The message text is not escaped, so
// input containing template-like markup can break the instruction framing.
const (
	header = `다음 메시지가 사기인지 분석해주세요.

분석할 메시지:
"`

	footer = `"

사기 유형:
1. 투자사기: 원금 보장, 고수익 보장, 리딩방 초대, 긴급한 입금 요구
2. 중고거래사기: 선입금 요구, 직거래 회피, 시세보다 지나치게 싼 가격, 외부 링크 결제 유도

반드시 JSON 형식으로만 응답하세요. 다른 텍스트는 포함하지 마세요:
{
  "isScam": true 또는 false,
  "confidence": 0.0에서 1.0 사이의 숫자,
  "scamType": "투자사기" 또는 "중고거래사기" 또는 "피싱" 또는 "정상",
  "warningMessage": "사용자에게 보여줄 경고 (최대 2문장)",
  "reasons": ["판단 근거"],
  "suspiciousParts": ["메시지에서 의심스러운 부분"]
}`
)

// Build returns the classification prompt for one message. Pure function: no
// I/O, same output for the same input.
func Build(text string) string {
	var b strings.Builder
	b.Grow(len(header) + len(text) + len(footer))
	b.WriteString(header)
	b.WriteString(text)
	b.WriteString(footer)
	return b.String()
}
