package recommend

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSONArray = errors.New("no JSON array of objects in response")

var (
	lineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	trailingComma = regexp.MustCompile(`,(\s*[\]}])`)
)

// ExtractObjects pulls the first JSON array of objects out of free-form model output.
// Code fences and surrounding prose are ignored. When nothing decodes, whole-line //
// comments and trailing commas are removed and the scan runs once more.
func ExtractObjects(text string) ([]map[string]any, error) {
	s := stripFences(text)
	if out, ok := firstObjectArray(s); ok {
		return out, nil
	}
	cleaned := trailingComma.ReplaceAllString(lineComment.ReplaceAllString(s, ""), "$1")
	if out, ok := firstObjectArray(cleaned); ok {
		return out, nil
	}
	return nil, ErrNoJSONArray
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// firstObjectArray tries every '[' in order and returns the first one that decodes
// as an array whose elements are all objects.
func firstObjectArray(s string) ([]map[string]any, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		var raw []any
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}
		objs := make([]map[string]any, 0, len(raw))
		for _, it := range raw {
			m, ok := it.(map[string]any)
			if !ok {
				objs = nil
				break
			}
			objs = append(objs, m)
		}
		if objs != nil {
			return objs, true
		}
	}
	return nil, false
}
