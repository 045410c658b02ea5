// Package chat holds the conversation-side core: prompt assembly, reasoning
// segment extraction, the incremental reveal engine, and the farm selection
// context that scopes history loads.
package chat

import (
	"regexp"
	"strings"
)

// Reasoning-capable models wrap their internal deliberation in a
// <think>...</think> block ahead of the visible answer. Non-greedy: only the
// first pair is honored.
var thinkRe = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ExtractThinking separates the reasoning segment from the user-visible
// answer. When the marker pair is present, thinking is the trimmed interior
// and response is the raw text with the whole marked span removed, trimmed.
// An unterminated or malformed marker is treated as no marker at all: the
// response is the raw text unchanged, opening tag included. Downstream
// persistence relies on thinking being empty rather than partial in that
// case.
func ExtractThinking(raw string) (thinking, response string) {
	loc := thinkRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return "", raw
	}
	thinking = strings.TrimSpace(raw[loc[2]:loc[3]])
	response = strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
	return thinking, response
}

// StripThinking removes every well-formed think span and trims the result.
// Used by the single-shot advisory flows, which discard reasoning entirely.
func StripThinking(raw string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(raw, ""))
}
