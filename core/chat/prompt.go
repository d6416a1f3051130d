package chat

import (
	"fmt"
	"strings"
)

// ComposePrompt embeds the recap of prior turns, the knowledge document, the handover
// notes and the user question into a single prompt.
func ComposePrompt(recap []Turn, knowledge, handover, question string) string {
	var sb strings.Builder
	if len(recap) > 0 {
		sb.WriteString("<conversation_recap>\n")
		for _, turn := range recap {
			speaker := "User"
			if turn.Role == RoleModel {
				speaker = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, turn.Text)
		}
		sb.WriteString("</conversation_recap>\n\n")
	}

	sb.WriteString("<knowledge_base>\n")
	sb.WriteString(knowledge)
	sb.WriteString("\n</knowledge_base>\n\n")

	if handover = strings.TrimSpace(handover); handover != "" {
		sb.WriteString("<handover_report>\n")
		sb.WriteString(handover)
		sb.WriteString("\n</handover_report>\n\n")
	}

	fmt.Fprintf(&sb, "User Question: %q", question)
	return sb.String()
}
