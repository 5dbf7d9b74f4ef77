package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseArray parses model output into a slice of T. The whole body is tried
// as JSON first; if that fails, the first balanced JSON array substring is
// extracted and parsed. Anything else is a contract violation. There is no
// partial acceptance: either the whole array parses or the caller falls back.
func ParseArray[T any](content string) ([]T, error) {
	trimmed := strings.TrimSpace(content)

	var result []T
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return result, nil
	}

	arr, ok := firstBalancedArray(trimmed)
	if !ok {
		return nil, NewError(KindContract, "no JSON array found in response", nil)
	}
	if err := json.Unmarshal([]byte(arr), &result); err != nil {
		return nil, NewError(KindContract, "unmarshal JSON array", err)
	}

	return result, nil
}

// firstBalancedArray finds the first bracket-balanced JSON array in s.
// Depth counting skips brackets inside string literals and escape sequences.
func firstBalancedArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}

// MustMarshal marshals v for embedding in prompts, panicking on the
// impossible case of our own structs failing to serialize.
func MustMarshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("marshal prompt payload: %v", err))
	}
	return string(b)
}
