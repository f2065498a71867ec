package chat

import "strings"

const titleLength = 30

// Title derives a session title from the first message: its first 30
// characters, with an ellipsis when it was cut.
func Title(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= titleLength {
		return message
	}
	return string(runes[:titleLength]) + "..."
}
