package analysis_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/GoCodeAlone/pmdash/analysis"
	"github.com/GoCodeAlone/pmdash/config"
	"github.com/GoCodeAlone/pmdash/project"
	"github.com/GoCodeAlone/pmdash/provider"
	"github.com/GoCodeAlone/pmdash/provider/mock"
)

func testTasks() []project.Task {
	return []project.Task{
		{Description: "Design API", Status: "Done", Owner: "Alice", DueDate: "2024-01-01"},
		{Description: "Build UI", Status: "In Progress", Owner: "Bob", DueDate: "2024-02-01"},
		{Description: "Deploy", Status: "Blocked", Owner: "Carol", DueDate: "2024-03-01"},
	}
}

func newPipeline(p provider.Provider) *analysis.Pipeline {
	return analysis.New(p, config.Default(), slog.Default())
}

func TestRun_FullFlow(t *testing.T) {
	p := mock.New(
		`{"summary": "Project is mostly on track.", "milestones": ["2024-01", "2024-03"], "updates": ["UI work started"]}`,
		`[{"task": "Deploy", "reason": "Blocked", "owner": "Carol", "due": "2024-03-01", "severityAnalysis": "High: on the critical path"}]`,
		`["Escalate the deploy blocker to Carol's manager"]`,
	)
	result, err := newPipeline(p).Run(context.Background(), testTasks(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Summary != "Project is mostly on track." {
		t.Errorf("summary: got %q", result.Summary)
	}
	if len(result.Milestones) != 2 {
		t.Errorf("milestones: got %v", result.Milestones)
	}
	if len(result.Tasks) != 3 {
		t.Fatalf("expected original 3 tasks, got %d", len(result.Tasks))
	}
	for i, want := range []string{"Design API", "Build UI", "Deploy"} {
		if result.Tasks[i].Description != want {
			t.Errorf("task %d: expected %q, got %q", i, want, result.Tasks[i].Description)
		}
	}

	real := project.RealBlockers(result.Blockers)
	if len(real) != 1 || real[0].Task != "Deploy" {
		t.Errorf("expected one real blocker for Deploy, got %v", result.Blockers)
	}
	if len(result.Actions) == 0 {
		t.Fatal("expected non-empty actions")
	}
	// deterministic follow-up first, model plan appended
	if result.Actions[0] != "Follow up with Carol on 'Deploy' (Reason: Blocked, Due: 2024-03-01)" {
		t.Errorf("unexpected first action: %q", result.Actions[0])
	}
	if result.Actions[len(result.Actions)-1] != "Escalate the deploy blocker to Carol's manager" {
		t.Errorf("unexpected last action: %q", result.Actions[len(result.Actions)-1])
	}
}

func TestRun_GarbageResearchResponseDegrades(t *testing.T) {
	const garbage = "I am sorry, I cannot produce JSON today."
	p := mock.New(
		garbage,
		`[{"task": "Deploy", "reason": "Blocked", "owner": "Carol", "due": "2024-03-01"}]`,
		`["Check in with Carol"]`,
	)
	result, err := newPipeline(p).Run(context.Background(), testTasks(), "")
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if result.Summary != garbage {
		t.Errorf("expected raw text as summary, got %q", result.Summary)
	}
	if len(result.Milestones) != 0 || len(result.Updates) != 0 {
		t.Errorf("expected empty milestones/updates, got %v / %v", result.Milestones, result.Updates)
	}
}

func TestRun_UnparseableBlockerResponseKeepsAnalysisSentinel(t *testing.T) {
	const assessment = "These blockers are all critical and should be escalated immediately."
	p := mock.New(
		`{"summary": "ok", "milestones": [], "updates": []}`,
		assessment,
		`["Keep monitoring"]`,
	)
	result, err := newPipeline(p).Run(context.Background(), testTasks(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Blockers) != 1 {
		t.Fatalf("expected a single sentinel entry, got %v", result.Blockers)
	}
	sentinel := result.Blockers[0]
	if sentinel.Real() {
		t.Errorf("sentinel must not count as a real blocker: %+v", sentinel)
	}
	if sentinel.SeverityAnalysis != assessment {
		t.Errorf("expected raw text kept as risk analysis, got %q", sentinel.SeverityAnalysis)
	}
	if len(project.RealBlockers(result.Blockers)) != 0 {
		t.Errorf("expected no real blockers, got %v", result.Blockers)
	}
	if len(result.Actions) == 0 {
		t.Error("expected non-empty actions")
	}
}

func TestRun_NoBlockedTasksSkipsBlockerCall(t *testing.T) {
	tasks := []project.Task{
		{Description: "Design API", Status: "Done", Owner: "Alice", DueDate: "2024-01-01"},
		{Description: "Build UI", Status: "In Progress", Owner: "Bob", DueDate: "2024-02-01"},
	}
	// Only research and action responses are scripted; the blocker call is
	// skipped when the status scan finds no candidates.
	p := mock.New(
		`{"summary": "Healthy project", "milestones": [], "updates": []}`,
		`["Plan the next sprint"]`,
	)
	result, err := newPipeline(p).Run(context.Background(), tasks, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Blockers) != 0 {
		t.Errorf("expected no blockers, got %v", result.Blockers)
	}
	if result.Actions[0] != "No immediate actions required. Monitor project progress." {
		t.Errorf("unexpected first action: %q", result.Actions[0])
	}
	if result.Actions[len(result.Actions)-1] != "Plan the next sprint" {
		t.Errorf("unexpected last action: %q", result.Actions[len(result.Actions)-1])
	}
}

func TestRun_ProviderErrorAborts(t *testing.T) {
	authErr := &provider.Error{Provider: "openai", Kind: provider.KindAuthFailure, Status: 401, Message: "bad key"}
	result, err := newPipeline(mock.NewFailing(authErr)).Run(context.Background(), testTasks(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Errorf("expected no partial result, got %+v", result)
	}
	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Kind != provider.KindAuthFailure {
		t.Errorf("expected wrapped auth failure, got %v", err)
	}
}

func TestRun_LateStageProviderErrorAborts(t *testing.T) {
	rateErr := &provider.Error{Provider: "openai", Kind: provider.KindRateLimited, Status: 429, Message: "slow down"}
	cases := []struct {
		name     string
		failCall int
	}{
		{"blocker stage", 2},
		{"action stage", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mock.NewFailingAt(tc.failCall, rateErr,
				`{"summary": "ok", "milestones": [], "updates": []}`,
				`[{"task": "Deploy", "reason": "Blocked", "owner": "Carol", "due": "2024-03-01"}]`,
			)
			result, err := newPipeline(p).Run(context.Background(), testTasks(), "")
			if err == nil {
				t.Fatal("expected error")
			}
			if result != nil {
				t.Errorf("expected no partial result, got %+v", result)
			}
			var perr *provider.Error
			if !errors.As(err, &perr) || perr.Kind != provider.KindRateLimited {
				t.Errorf("expected wrapped rate-limit error, got %v", err)
			}
		})
	}
}

func TestRun_UnparseableActionResponseKeepsRawText(t *testing.T) {
	const plan = "1. Fix deploy. 2. Ship it."
	p := mock.New(
		`{"summary": "ok", "milestones": [], "updates": []}`,
		`[{"task": "Deploy", "reason": "Blocked", "owner": "Carol", "due": "2024-03-01"}]`,
		plan,
	)
	result, err := newPipeline(p).Run(context.Background(), testTasks(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Actions[len(result.Actions)-1] != plan {
		t.Errorf("expected raw plan appended, got %v", result.Actions)
	}
}
