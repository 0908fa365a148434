package quizgen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Extraction failures. The assembler converts these into a fallback payload;
// they never surface to API callers.
var (
	ErrNoJSONFound = errors.New("model returned unexpected format (no JSON object found)")
	ErrInvalidJSON = errors.New("model returned invalid JSON")
)

var (
	smartQuoteReplacer = strings.NewReplacer(
		"“", `"`, // left double quote
		"”", `"`, // right double quote
		"‘", "'", // left single quote
		"’", "'", // right single quote
	)

	greedyObjectPattern  = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x1f]+`)
)

// ExtractJSON recovers a single JSON object from noisy model output: smart
// quotes are normalized, one layer of code fencing is stripped, the first
// balanced {...} region is sliced out, trailing commas are removed and the
// result is parsed strictly (with one control-character-stripping retry).
// The returned bytes are the repaired JSON, ready for typed decoding.
func ExtractJSON(text string) ([]byte, error) {
	t := smartQuoteReplacer.Replace(text)

	// Strip one layer of markdown code fencing, preferring a fence that is
	// explicitly tagged as JSON.
	if idx := strings.Index(t, "```json"); idx != -1 {
		t = t[idx+len("```json"):]
		if end := strings.Index(t, "```"); end != -1 {
			t = t[:end]
		}
	} else if strings.Contains(t, "```") {
		parts := strings.SplitN(t, "```", 3)
		if len(parts) >= 2 {
			t = parts[1]
		}
	}

	firstBrace := strings.Index(t, "{")
	if firstBrace == -1 {
		return nil, ErrNoJSONFound
	}

	// Scan forward tracking brace depth to find the matching close for the
	// first opening brace.
	endIndex := -1
	depth := 0
	for i := firstBrace; i < len(t); i++ {
		switch t[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				endIndex = i
			}
		}
		if endIndex != -1 {
			break
		}
	}

	if endIndex == -1 {
		match := greedyObjectPattern.FindString(t)
		if match == "" {
			return nil, ErrNoJSONFound
		}
		t = match
	} else {
		t = t[firstBrace : endIndex+1]
	}

	t = trailingCommaPattern.ReplaceAllString(t, "$1")

	if jsonIsValid(t) {
		return []byte(t), nil
	}

	// Control characters inside string literals make strict parsing fail;
	// strip them and retry once.
	cleaned := controlCharPattern.ReplaceAllString(t, "")
	if jsonIsValid(cleaned) {
		return []byte(cleaned), nil
	}

	return nil, ErrInvalidJSON
}

func jsonIsValid(s string) bool {
	var probe map[string]interface{}
	return json.Unmarshal([]byte(s), &probe) == nil
}
