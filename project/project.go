// Package project defines the domain model for a project status analysis.
package project

import "strings"

// Task is a single row from an uploaded project spreadsheet.
// Tasks are immutable once loaded; Owner and DueDate carry display
// defaults when the source cell was empty.
type Task struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Owner       string `json:"owner"`
	DueDate     string `json:"dueDate"`
}

// Display defaults for optional task fields.
const (
	UnassignedOwner = "Unassigned"
	NoDueDate       = "No due date"
)

// Snapshot is the structured project context produced by the research stage.
type Snapshot struct {
	Summary    string   `json:"summary"`
	Milestones []string `json:"milestones"`
	Updates    []string `json:"updates"`
	Tasks      []Task   `json:"tasks"`
}

// Blocker is one detected blocker or risk. An entry with an empty Task is
// a sentinel carrying only the model's risk analysis; it must not be
// treated as a real blocker.
type Blocker struct {
	Task             string `json:"task,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Owner            string `json:"owner,omitempty"`
	Due              string `json:"due,omitempty"`
	SeverityAnalysis string `json:"severityAnalysis,omitempty"`
}

// Real reports whether the entry describes an actual blocked task.
func (b Blocker) Real() bool { return strings.TrimSpace(b.Task) != "" }

// RealBlockers filters out sentinel entries.
func RealBlockers(blockers []Blocker) []Blocker {
	out := make([]Blocker, 0, len(blockers))
	for _, b := range blockers {
		if b.Real() {
			out = append(out, b)
		}
	}
	return out
}

// Result is the aggregate analysis returned to the client.
// Blockers and Actions are always non-nil so they encode as [] rather
// than null.
type Result struct {
	Summary    string    `json:"summary"`
	Milestones []string  `json:"milestones"`
	Updates    []string  `json:"updates"`
	Tasks      []Task    `json:"tasks"`
	Blockers   []Blocker `json:"blockers"`
	Actions    []string  `json:"actions"`
}

// blockedStatuses are the status keywords that mark a task as blocked.
var blockedStatuses = map[string]struct{}{
	"blocked":     {},
	"delayed":     {},
	"overdue":     {},
	"not started": {},
	"pending":     {},
}

// BlockedStatus reports whether a free-form status string counts as
// blocked. Matching is case-insensitive on the trimmed value.
func BlockedStatus(status string) bool {
	_, ok := blockedStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}
