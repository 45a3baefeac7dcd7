package analysis

import (
	"testing"
)

func TestParseSnapshot(t *testing.T) {
	raw := "Here is the analysis you asked for:\n" +
		`{"summary": "On track", "milestones": ["2024-01", "2024-02"], "updates": ["UI started"]}` +
		"\nLet me know if you need more."
	p, ok := parseSnapshot(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if p.Summary != "On track" {
		t.Errorf("summary: got %q", p.Summary)
	}
	if len(p.Milestones) != 2 || p.Milestones[0] != "2024-01" {
		t.Errorf("milestones: got %v", p.Milestones)
	}
	if len(p.Updates) != 1 {
		t.Errorf("updates: got %v", p.Updates)
	}
}

func TestParseSnapshot_Garbage(t *testing.T) {
	for _, raw := range []string{
		"I could not analyze the project, sorry.",
		"{broken json",
		"",
	} {
		if _, ok := parseSnapshot(raw); ok {
			t.Errorf("expected parse failure for %q", raw)
		}
	}
}

func TestParseBlockers(t *testing.T) {
	raw := "```json\n" +
		`[{"task": "Deploy", "reason": "Blocked", "owner": "Carol", "due": "2024-03-01", "severityAnalysis": "High"}]` +
		"\n```"
	blockers, ok := parseBlockers(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if len(blockers) != 1 {
		t.Fatalf("expected 1 blocker, got %d", len(blockers))
	}
	if blockers[0].Task != "Deploy" || blockers[0].SeverityAnalysis != "High" {
		t.Errorf("unexpected blocker: %+v", blockers[0])
	}
}

func TestParseBlockers_Garbage(t *testing.T) {
	if _, ok := parseBlockers("no list here"); ok {
		t.Error("expected parse failure")
	}
	if _, ok := parseBlockers("[not json]"); ok {
		t.Error("expected parse failure")
	}
}

func TestParseActions_Strings(t *testing.T) {
	actions, ok := parseActions(`["Unblock deploy", "Ping Carol"]`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if len(actions) != 2 || actions[0] != "Unblock deploy" {
		t.Errorf("unexpected actions: %v", actions)
	}
}

func TestParseActions_Objects(t *testing.T) {
	raw := `[{"action": "Escalate deploy blocker", "priority": "High"}, {"task": "Review timeline"}, {"note": "ignored"}]`
	actions, ok := parseActions(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %v", actions)
	}
	if actions[0] != "Escalate deploy blocker" || actions[1] != "Review timeline" {
		t.Errorf("unexpected actions: %v", actions)
	}
}

func TestParseActions_SkipsEmptyStrings(t *testing.T) {
	actions, ok := parseActions(`["", "  ", "Real action"]`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if len(actions) != 1 || actions[0] != "Real action" {
		t.Errorf("unexpected actions: %v", actions)
	}
}
