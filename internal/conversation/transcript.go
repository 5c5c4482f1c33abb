package conversation

import "strings"

// Render projects messages into the learner-facing transcript: every
// non-system message as "role: content" followed by a blank line.
func Render(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
