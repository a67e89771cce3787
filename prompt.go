package webintel

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SystemInstruction is the constant preamble of every model prompt.
// Backends with a native system role pass it separately and send
// BuildUserPrompt's output as the user turn; the rest use BuildPrompt.
const SystemInstruction = "You are a helpful AI assistant analyzing web content. " +
	"Answer questions based on the provided content accurately and concisely."

// TruncationNotice is appended to content cut by PrepareContext.
const TruncationNotice = "\n\n[Note: Content truncated to fit context window]"

// maxHistoryTurns bounds how many conversation turns BuildPrompt renders,
// independent of the session manager's own windowing.
const maxHistoryTurns = 5

// PrepareContext fits content into a token budget using the approximation
// 1 token ≈ 4 characters. Content within the budget passes through
// unchanged; longer content is cut at exactly maxTokens*4 bytes and the
// truncation notice is appended. The rule is deliberately crude and is not
// a token-accurate count.
func PrepareContext(content string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars] + TruncationNotice
}

// BuildPrompt assembles the full model prompt in fixed order: system
// instruction, the prepared content, up to the last five history turns,
// the user's question, and a final answer cue. Content must already be
// sized with PrepareContext; history turns are rendered as given and not
// re-truncated.
func BuildPrompt(question, content string, history []Turn) string {
	return SystemInstruction + "\n\n" + BuildUserPrompt(question, content, history)
}

// BuildUserPrompt assembles the user portion of the prompt, without the
// system instruction.
func BuildUserPrompt(question, content string, history []Turn) string {
	var b strings.Builder
	b.WriteString("Content to analyze:\n")
	b.WriteString(content)
	b.WriteString("\n")
	if len(history) > 0 {
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
		b.WriteString("\n\nPrevious conversation:\n")
		for _, turn := range history {
			b.WriteString(capitalize(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nUser question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
