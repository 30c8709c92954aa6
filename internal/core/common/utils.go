package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	arrayPattern  = regexp.MustCompile(`\[[\s\S]*\]`)
)

// ParseJSON unmarshals an LLM response into T. The response may wrap the JSON
// in markdown fences or prose: the first {...} (or [...]) block is tried
// first, then the raw response, and only then an error is returned.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	s := strings.TrimSpace(response)
	if s == "" {
		return zero, fmt.Errorf("empty response")
	}

	var result T
	for _, re := range []*regexp.Regexp{objectPattern, arrayPattern} {
		match := re.FindString(s)
		if match == "" {
			continue
		}
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return result, nil
		}
		result = zero
	}

	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, truncate(s, 200))
	}
	return result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
