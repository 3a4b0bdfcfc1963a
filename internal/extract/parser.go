package extract

import (
	"strings"

	"github.com/tidwall/gjson"
)

// thinkCloseTag closes the chain-of-thought block some models (Qwen3 among
// them) emit before the answer. Everything up to and including its last
// occurrence is discarded.
const thinkCloseTag = "</think>"

// ParseOperations extracts operation-like elements from a raw model
// completion. The input is untrusted free text: it may carry a reasoning
// preamble, surrounding prose, or no JSON at all. This is best-effort and
// never fails; anything unusable yields an empty slice.
func ParseOperations(raw string) []gjson.Result {
	if idx := strings.LastIndex(raw, thinkCloseTag); idx >= 0 {
		raw = raw[idx+len(thinkCloseTag):]
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	segment := raw[start : end+1]
	if !gjson.Valid(segment) {
		return nil
	}

	parsed := gjson.Parse(segment)
	if !parsed.IsArray() {
		return nil
	}

	var elements []gjson.Result
	parsed.ForEach(func(_, el gjson.Result) bool {
		// Non-objects and objects without a key are dropped silently.
		if el.IsObject() && el.Get("key").Exists() {
			elements = append(elements, el)
		}
		return true
	})
	return elements
}
