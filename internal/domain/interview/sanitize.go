package interview

import (
	"context"
	"regexp"
	"strings"

	"pulse-server/internal/utils/platformerrors"
)

// StartConversationSentinel marks the introduction trigger. It bypasses
// sanitization and is never treated as real user content.
const StartConversationSentinel = "[START_CONVERSATION]"

const (
	// MaxContentLength bounds a single user utterance.
	MaxContentLength = 2000
	// maxSpecialChars is the injection-guard threshold applied after
	// markup stripping.
	maxSpecialChars = 10
)

var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	markupTagPattern = regexp.MustCompile(`<[^>]*>`)
	specialCharSet   = "<>{}[]\\|`"
)

// SanitizeContent validates and cleans one user utterance. It strips script
// elements (including their contents) and all remaining markup tags, then
// rejects input that still carries more than maxSpecialChars characters from
// the injection-prone set.
func SanitizeContent(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content is required", nil, "")
	}
	if len(content) > MaxContentLength {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content exceeds maximum length", nil, "")
	}

	cleaned := scriptTagPattern.ReplaceAllString(content, "")
	cleaned = markupTagPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	special := 0
	for _, r := range cleaned {
		if strings.ContainsRune(specialCharSet, r) {
			special++
		}
	}
	if special > maxSpecialChars {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"too many special characters", nil, "")
	}

	return cleaned, nil
}

// IsStartSentinel reports whether the given messages represent the
// introduction trigger: the sentinel as the sole, first message.
func IsStartSentinel(messages []Message) bool {
	return len(messages) == 1 &&
		messages[0].Role == RoleUser &&
		strings.TrimSpace(messages[0].Content) == StartConversationSentinel
}
