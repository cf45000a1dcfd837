package review

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

var (
	leadingFence   = regexp.MustCompile("(?i)^```(?:json)?")
	trailingFence  = regexp.MustCompile("```$")
	trailingObject = regexp.MustCompile(`\{[\s\S]*\}$`)
	nonNumeric     = regexp.MustCompile(`[^\d.]`)
)

// NonJSONError means no JSON object could be recovered from the LLM output.
type NonJSONError struct {
	Raw string
}

func (e *NonJSONError) Error() string {
	return fmt.Sprintf("llm returned non-JSON response (%d bytes)", len(e.Raw))
}

// ParseLLMResponse recovers a JSON object from raw model output and shapes it
// into a ReviewResult.
func ParseLLMResponse(raw string) (ReviewResult, error) {
	payload, ok := recoverObject(raw)
	if !ok {
		return ReviewResult{}, &NonJSONError{Raw: raw}
	}
	return Normalize(payload), nil
}

func recoverObject(raw string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = leadingFence.ReplaceAllString(cleaned, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if obj, ok := decodeObject(cleaned); ok {
		return obj, true
	}
	if match := trailingObject.FindString(cleaned); match != "" {
		return decodeObject(match)
	}
	return nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok && obj != nil
}

// Normalize coerces a loosely-typed payload into a ReviewResult. Applying it
// to the JSON form of its own output yields the same value.
func Normalize(payload map[string]any) ReviewResult {
	result := ReviewResult{
		Grammar:      textField(payload["grammar"]),
		JobFit:       textField(payload["jobFit"]),
		Tone:         textField(payload["tone"]),
		Keywords:     Keywords{Missing: []string{}},
		BulletPoints: []BulletPoint{},
	}

	if kw, ok := payload["keywords"].(map[string]any); ok {
		result.Keywords.Missing = stringList(kw["missing"])
		result.Keywords.Score = NormalizeScore(kw["score"])
	}

	if items, ok := payload["bulletPoints"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			var bp BulletPoint
			if err := mapstructure.WeakDecode(obj, &bp); err != nil {
				continue
			}
			result.BulletPoints = append(result.BulletPoints, bp)
		}
	}
	return result
}

// NormalizeScore maps a model-provided score onto an integer in [0, 100].
// Non-numeric characters are dropped, a decimal value of at most 1 is read as
// a fraction, and anything unparseable becomes 0.
func NormalizeScore(v any) int {
	raw := strings.TrimSpace(scoreString(v))
	cleaned := nonNumeric.ReplaceAllString(raw, "")

	var n float64
	if cleaned != "" {
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err == nil && !math.IsInf(parsed, 0) && !math.IsNaN(parsed) {
			n = parsed
		}
	}
	// "1.0" reads as a fraction and becomes 100.
	if n <= 1 && strings.Contains(raw, ".") {
		n *= 100
	}
	n = math.Floor(n + 0.5)
	return int(math.Max(0, math.Min(100, n)))
}

// scoreString renders v the way a JavaScript String() call would for the
// shapes a model returns: lists join their elements with commas, so [85]
// reads as "85".
func scoreString(v any) string {
	items, ok := v.([]any)
	if !ok {
		return cast.ToString(v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = scoreString(item)
	}
	return strings.Join(parts, ",")
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		s, err := cast.ToStringE(item)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// textField keeps strings, joins lists line by line and stringifies scalars.
func textField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := textField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return cast.ToString(t)
	}
}
