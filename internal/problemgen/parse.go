package problemgen

import (
	"encoding/json"
	"strings"
)

// ParseKind tags a ParseResult.
type ParseKind int

const (
	// ParseMalformed means no JSON object could be read from the text.
	ParseMalformed ParseKind = iota
	// ParseOK means the whole text was a JSON object.
	ParseOK
	// ParseRecovered means a JSON object was found embedded in the text.
	ParseRecovered
)

func (k ParseKind) String() string {
	switch k {
	case ParseOK:
		return "ok"
	case ParseRecovered:
		return "recovered"
	default:
		return "malformed"
	}
}

// ParseResult is either a JSON object (Object set) or the malformed text.
type ParseResult struct {
	Kind   ParseKind
	Object json.RawMessage
	Raw    string
}

// OK reports whether an object was read.
func (r ParseResult) OK() bool { return r.Kind != ParseMalformed }

// Parse reads a JSON object from model output. It first parses the whole
// text strictly, then falls back to the first balanced {...} span.
func Parse(text string) ParseResult {
	trimmed := strings.TrimSpace(text)
	if isObject([]byte(trimmed)) {
		return ParseResult{Kind: ParseOK, Object: json.RawMessage(trimmed), Raw: text}
	}
	if span, ok := firstObject(trimmed); ok && isObject([]byte(span)) {
		return ParseResult{Kind: ParseRecovered, Object: json.RawMessage(span), Raw: text}
	}
	return ParseResult{Kind: ParseMalformed, Raw: text}
}

func isObject(b []byte) bool {
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}

// firstObject returns the first balanced {...} span of s, skipping braces
// inside string literals.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
