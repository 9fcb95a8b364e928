package interview

// Role is a transcript message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry as submitted by the client.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LastUserContent returns the content of the most recent user message.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
