package analysis

import (
	"encoding/json"
	"strings"

	"github.com/GoCodeAlone/pmdash/project"
)

// Model responses often wrap JSON in prose or code fences. These helpers
// cut the outermost JSON value out of the raw text before unmarshalling,
// and report failure instead of erroring so callers can degrade.

// extractObject returns the substring from the first '{' to the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// extractArray returns the substring from the first '[' to the last ']'.
func extractArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// snapshotPayload is the JSON shape requested from the research stage.
type snapshotPayload struct {
	Summary    string   `json:"summary"`
	Milestones []string `json:"milestones"`
	Updates    []string `json:"updates"`
}

// parseSnapshot parses a research-stage response.
func parseSnapshot(raw string) (snapshotPayload, bool) {
	obj, ok := extractObject(raw)
	if !ok {
		return snapshotPayload{}, false
	}
	var p snapshotPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return snapshotPayload{}, false
	}
	return p, true
}

// parseBlockers parses a blocker-stage response into blocker entries.
func parseBlockers(raw string) ([]project.Blocker, bool) {
	arr, ok := extractArray(raw)
	if !ok {
		return nil, false
	}
	var blockers []project.Blocker
	if err := json.Unmarshal([]byte(arr), &blockers); err != nil {
		return nil, false
	}
	return blockers, true
}

// parseActions parses an action-stage response. Elements may be plain
// strings or objects carrying the action text under a known key.
func parseActions(raw string) ([]string, bool) {
	arr, ok := extractArray(raw)
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, false
	}
	var actions []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				actions = append(actions, s)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range []string{"action", "task", "description"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				actions = append(actions, strings.TrimSpace(s))
				break
			}
		}
	}
	return actions, true
}
