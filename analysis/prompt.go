// Package analysis implements the three-stage project analysis pipeline:
// research, blocker detection, and action planning.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GoCodeAlone/pmdash/project"
)

// Stage system prompts.
const (
	researchSystem = "You are an expert project analyst, skilled at extracting structured context from project data."
	blockerSystem  = "You are a project risk analyst specializing in project management bottlenecks."
	actionSystem   = "You are a project management assistant focused on actionable planning."
)

const truncationMarker = "… (remaining tasks omitted)"

// describeProject renders tasks and optional free-text notes into a bounded
// plain-text project description. Output is deterministic: identical input
// yields byte-identical text. When over budget the notes are dropped first,
// then the task list is cut from the tail.
func describeProject(tasks []project.Task, notes string, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project has %d goals/tasks.\n", len(tasks))
	b.WriteString("Tasks:\n")

	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		lines = append(lines, fmt.Sprintf("%d. %s — status: %s; owner: %s; due: %s",
			i+1, t.Description, t.Status, t.Owner, t.DueDate))
	}
	b.WriteString(strings.Join(lines, "\n"))

	full := b.String()
	notes = strings.TrimSpace(notes)
	if notes != "" {
		withNotes := full + "\n\nNotes:\n" + notes
		if maxChars <= 0 || len(withNotes) <= maxChars {
			return withNotes
		}
		// over budget: notes are the lowest-priority detail
	}
	if maxChars <= 0 || len(full) <= maxChars {
		return full
	}

	// Cut task lines from the tail until the description fits.
	header := fmt.Sprintf("Project has %d goals/tasks.\nTasks:\n", len(tasks))
	for n := len(lines) - 1; n > 0; n-- {
		candidate := header + strings.Join(lines[:n], "\n") + "\n" + truncationMarker
		if len(candidate) <= maxChars {
			return candidate
		}
	}
	return strings.TrimSuffix(header, "\n") + "\n" + truncationMarker
}

// researchPrompt asks the model for structured project context.
func researchPrompt(description string) string {
	return description + `

Analyze the project information above. Respond with a single JSON object of the form:
{"summary": "brief project summary", "milestones": ["milestone", ...], "updates": ["recent update", ...]}
Respond with valid JSON only, no surrounding text.`
}

// clip cuts s to the character budget at a rune boundary and marks the cut.
// maxChars <= 0 means unbounded.
func clip(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := strings.ToValidUTF8(s[:maxChars], "")
	return cut + "\n" + truncationMarker
}

// blockerPrompt asks the model to enumerate blockers, seeded with the
// deterministic status-keyword candidates. The marshaled context honors
// the same character budget as the research description.
func blockerPrompt(snap project.Snapshot, candidates []project.Blocker, maxChars int) string {
	snapJSON, _ := json.Marshal(snap)
	candJSON, _ := json.Marshal(candidates)
	return fmt.Sprintf(`Project context:
%s

Tasks whose status suggests a blocker:
%s

Enumerate the project's blockers and risks. Respond with a single JSON array of the form:
[{"task": "task description", "reason": "why it is blocked", "owner": "responsible person", "due": "due date", "severityAnalysis": "severity and priority assessment"}]
Respond with valid JSON only, no surrounding text.`, clip(string(snapJSON), maxChars), clip(string(candJSON), maxChars))
}

// actionPrompt asks the model for a prioritized action plan.
func actionPrompt(snap project.Snapshot, blockers []project.Blocker, maxChars int) string {
	snapJSON, _ := json.Marshal(snap)
	blockJSON, _ := json.Marshal(blockers)
	return fmt.Sprintf(`Project context:
%s

Identified blockers:
%s

Suggest a concise, prioritized action plan for the project manager. Respond with a single JSON array of action strings, most urgent first:
["action", ...]
Respond with valid JSON only, no surrounding text.`, clip(string(snapJSON), maxChars), clip(string(blockJSON), maxChars))
}

// followUpActions builds the deterministic per-blocker follow-up lines.
// Never empty: with no real blockers it recommends monitoring.
func followUpActions(blockers []project.Blocker) []string {
	var actions []string
	for _, b := range project.RealBlockers(blockers) {
		actions = append(actions, fmt.Sprintf("Follow up with %s on '%s' (Reason: %s, Due: %s)",
			b.Owner, b.Task, b.Reason, b.Due))
	}
	if len(actions) == 0 {
		actions = append(actions, "No immediate actions required. Monitor project progress.")
	}
	return actions
}

// keywordBlockers scans task statuses for the known blocker keywords.
func keywordBlockers(tasks []project.Task) []project.Blocker {
	var blockers []project.Blocker
	for _, t := range tasks {
		if project.BlockedStatus(t.Status) {
			blockers = append(blockers, project.Blocker{
				Task:   t.Description,
				Reason: t.Status,
				Owner:  t.Owner,
				Due:    t.DueDate,
			})
		}
	}
	return blockers
}
