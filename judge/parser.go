package judge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled patterns for pulling a JSON object out of a judge response.
// Even with JSON response mode negotiated, models occasionally wrap the
// object in a markdown fence or append trailing commas.
var (
	// fencedObjectPattern matches a JSON object inside ```json ... ```.
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// bareObjectPattern matches any JSON object (greedy fallback).
	bareObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// wireVerdict mirrors the verdict wire contract with optional fields so
// missing keys are distinguishable from zero values.
type wireVerdict struct {
	Status    *string  `json:"status"`
	Certainty *float64 `json:"certainty"`
	Reasoning *string  `json:"reasoning"`
}

// ParseVerdict parses and validates a raw judge response into a canonical
// Verdict. It is total: every malformed, incomplete, or out-of-range payload
// yields a synthetic FAIL verdict naming the failing check, never an error
// and never a partially-valid Verdict. Parsing the same text twice yields
// identical Verdicts.
func ParseVerdict(rawText string) Verdict {
	v, _ := parseVerdict(rawText)
	return v
}

// parseVerdict additionally reports whether the payload was valid, so
// callers can withhold sidecar data (token usage) from synthetic verdicts.
func parseVerdict(rawText string) (Verdict, bool) {
	obj := extractObject(rawText)
	if obj == "" {
		return SyntheticFailure("verdict parse error: no JSON object found in judge response"), false
	}

	var wire wireVerdict
	if err := json.Unmarshal([]byte(obj), &wire); err != nil {
		return SyntheticFailure(fmt.Sprintf("verdict parse error: %v", err)), false
	}

	if wire.Status == nil {
		return SyntheticFailure("invalid verdict: missing field \"status\""), false
	}
	status := Status(*wire.Status)
	if status != StatusPass && status != StatusFail {
		return SyntheticFailure(fmt.Sprintf("invalid verdict: status %q is not PASS or FAIL", *wire.Status)), false
	}

	if wire.Certainty == nil {
		return SyntheticFailure("invalid verdict: missing field \"certainty\""), false
	}
	certainty := *wire.Certainty
	if certainty < 0.0 || certainty > 1.0 {
		return SyntheticFailure(fmt.Sprintf("invalid verdict: certainty %v is outside [0.0, 1.0]", certainty)), false
	}

	if wire.Reasoning == nil {
		return SyntheticFailure("invalid verdict: missing field \"reasoning\""), false
	}
	if strings.TrimSpace(*wire.Reasoning) == "" {
		return SyntheticFailure("invalid verdict: field \"reasoning\" is empty"), false
	}

	return Verdict{
		Status:    status,
		Certainty: certainty,
		Reasoning: *wire.Reasoning,
	}, true
}

// extractObject pulls the JSON object out of a response string, preferring a
// fenced block, and strips line comments and trailing commas.
func extractObject(content string) string {
	var raw string
	if matches := fencedObjectPattern.FindStringSubmatch(content); len(matches) > 1 {
		raw = matches[1]
	} else if match := bareObjectPattern.FindString(content); match != "" {
		raw = match
	} else {
		return ""
	}

	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line, respecting string
// values so URLs and paths inside reasoning text survive.
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
