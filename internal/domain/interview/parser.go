package interview

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FallbackQuestion is the generic continuation used when the model returned
// JSON-looking text that no parsing strategy could salvage.
const FallbackQuestion = "Thank you for sharing. Could you tell me a bit more about that?"

// ParsedReply is the structured form of a model turn. Fallback marks replies
// where the raw output was discarded or used verbatim instead of parsed.
type ParsedReply struct {
	Empathy  *string
	Question string
	Fallback bool
}

var (
	codeFencePattern     = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")
	questionBlockPattern = regexp.MustCompile(`(?s)\{[^{}]*"question"[^{}]*\}`)
	questionFragPattern  = regexp.MustCompile(`"question"\s*:\s*"([^"]+)`)
	empathyFragPattern   = regexp.MustCompile(`"empathy"\s*:\s*"([^"]+)"`)
)

type modelReplyJSON struct {
	Empathy  *string `json:"empathy"`
	Question string  `json:"question"`
}

// ParseModelReply turns near-JSON model output into a reply. Strategies are
// tried in order, first success wins; the function never fails and always
// returns a non-empty question.
func ParseModelReply(raw string) ParsedReply {
	text := strings.TrimSpace(raw)
	text = codeFencePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// 1. Direct parse of the whole payload.
	if reply, ok := tryParseJSON(text); ok {
		return reply
	}

	// 2. First {...} block that mentions "question".
	if block := questionBlockPattern.FindString(text); block != "" {
		if reply, ok := tryParseJSON(block); ok {
			return reply
		}
	}

	// 3. Fragment extraction, handles truncated JSON.
	if match := questionFragPattern.FindStringSubmatch(text); len(match) == 2 {
		question := strings.TrimRight(strings.TrimSpace(match[1]), `"}\`)
		if len(question) > 5 {
			return ParsedReply{Empathy: extractEmpathyFragment(text), Question: question}
		}
	}

	// 4. JSON-looking leftovers are discarded rather than shown to the user.
	if strings.ContainsAny(text, "{}") {
		return ParsedReply{Question: FallbackQuestion, Fallback: true}
	}

	// 5. Plain-text output is used verbatim.
	if text != "" {
		return ParsedReply{Question: text, Fallback: true}
	}
	return ParsedReply{Question: FallbackQuestion, Fallback: true}
}

func tryParseJSON(text string) (ParsedReply, bool) {
	var parsed modelReplyJSON
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return ParsedReply{}, false
	}
	question := strings.TrimSpace(parsed.Question)
	if question == "" {
		return ParsedReply{}, false
	}
	empathy := parsed.Empathy
	if empathy != nil && strings.TrimSpace(*empathy) == "" {
		empathy = nil
	}
	return ParsedReply{Empathy: empathy, Question: question}, true
}

func extractEmpathyFragment(text string) *string {
	if match := empathyFragPattern.FindStringSubmatch(text); len(match) == 2 {
		empathy := strings.TrimSpace(match[1])
		if empathy != "" && !strings.EqualFold(empathy, "null") {
			return &empathy
		}
	}
	return nil
}
