package llm

import (
	"fmt"
	"strings"
)

// DecodeOutput cleans raw model text and hands the JSON object to decode.
// A decode failure matches both ErrInvalidOutput and the decoder's own error.
func DecodeOutput[T any](raw string, decode func([]byte) (T, error)) (T, error) {
	var zero T

	cleaned, err := CleanJSON(raw)
	if err != nil {
		return zero, err
	}
	out, err := decode([]byte(cleaned))
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	return out, nil
}

// CleanJSON returns the first JSON object in raw model output. Markdown
// fences are dropped, comments removed and ".5"-style numbers repaired.
func CleanJSON(raw string) (string, error) {
	obj := firstObject(stripFences(raw))
	if obj == "" {
		return "", fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	return repair(obj), nil
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// literal tracks whether a byte stream is inside a JSON string.
type literal struct {
	open    bool
	escaped bool
}

// step consumes c and reports whether it belongs to a string literal,
// quotes included.
func (l *literal) step(c byte) bool {
	switch {
	case l.escaped:
		l.escaped = false
		return true
	case l.open && c == '\\':
		l.escaped = true
		return true
	case c == '"':
		l.open = !l.open
		return true
	}
	return l.open
}

// firstObject returns the first balanced {...} in s, or "".
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	var lit literal
	depth := 0
	for i := start; i < len(s); i++ {
		c := s[i]
		if lit.step(c) {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			if depth--; depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repair drops // and /* */ comments outside strings and rewrites numbers
// such as ".8" and "-.3" to "0.8" and "-0.3".
func repair(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var (
		lit  literal
		prev byte
	)
	emit := func(c byte) {
		b.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if lit.step(c) {
			emit(c)
			continue
		}
		next := byte(0)
		if i+1 < len(s) {
			next = s[i+1]
		}
		switch {
		case c == '/' && next == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && next == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			continue
		case c == '.' && isDigit(next) && startsNumber(prev):
			emit('0')
		}
		emit(c)
	}
	return b.String()
}

func startsNumber(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
