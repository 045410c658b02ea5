package llm

import (
	"bytes"
	"encoding/json"
)

// ErrorBodyKind tags how an upstream error body was interpreted.
type ErrorBodyKind int

const (
	// ErrorBodyParsed: the JSON error envelope carried a message.
	ErrorBodyParsed ErrorBodyKind = iota
	// ErrorBodyFallback: no envelope; the raw body text was used.
	ErrorBodyFallback
	// ErrorBodyUnknown: nothing usable; callers get "Unknown error".
	ErrorBodyUnknown
)

type providerErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parseErrorBody extracts a human-readable message from an upstream error
// body. Strict parse with fallback: a JSON envelope {"error":{"message":...}}
// wins; a bare JSON string or plain text body is used verbatim; any other
// shape yields "Unknown error".
func parseErrorBody(body []byte) (string, ErrorBodyKind) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "Unknown error", ErrorBodyUnknown
	}

	if json.Valid(trimmed) {
		var env providerErrorEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Error.Message != "" {
			return env.Error.Message, ErrorBodyParsed
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil && s != "" {
			return s, ErrorBodyFallback
		}
		return "Unknown error", ErrorBodyUnknown
	}

	return string(trimmed), ErrorBodyFallback
}
