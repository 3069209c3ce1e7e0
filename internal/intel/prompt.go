package intel

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent with every checklist request.
const SystemPrompt = "You are a helpful assistant."

const checklistPrompt = `You are a competitive intelligence analyst.
For the company %q, give a concise, fact-based answer for each field below.

Rules:
- Return ONLY a valid JSON object, no prose and no code fences
- Each key must match the field name exactly
- Use a nested object when a field naturally has sub-parts
- Write "Unknown" rather than guessing when no reliable information exists

Fields:
`

// BuildPrompt asks for one answer per field, in schema order.
func BuildPrompt(company string, fields []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(checklistPrompt, company))
	for _, name := range fields {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	return sb.String()
}

// EstimateTokens approximates a prompt's token count at 1.33 tokens per
// whitespace separated word.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(int(float64(words)*1.33), 1)
}
