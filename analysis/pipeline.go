package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoCodeAlone/pmdash/config"
	"github.com/GoCodeAlone/pmdash/project"
	"github.com/GoCodeAlone/pmdash/provider"
)

// Pipeline sequences the three analysis stages. Each run is independent;
// the only shared object is the stateless provider.
type Pipeline struct {
	provider provider.Provider
	stages   config.StagesConfig
	maxChars int
	logger   *slog.Logger
}

// New creates a pipeline backed by the given provider.
func New(p provider.Provider, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		provider: p,
		stages:   cfg.Stages,
		maxChars: cfg.Prompt.MaxChars,
		logger:   logger,
	}
}

// Run executes research, blocker detection, and action planning in order.
// A provider failure at any stage aborts the run; response-parsing failures
// degrade to partial structured data and never surface as errors.
func (p *Pipeline) Run(ctx context.Context, tasks []project.Task, notes string) (*project.Result, error) {
	snap, err := p.research(ctx, tasks, notes)
	if err != nil {
		return nil, fmt.Errorf("research stage: %w", err)
	}

	blockers, err := p.detectBlockers(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("blocker detection stage: %w", err)
	}

	actions, err := p.planActions(ctx, snap, blockers)
	if err != nil {
		return nil, fmt.Errorf("action planning stage: %w", err)
	}

	return &project.Result{
		Summary:    snap.Summary,
		Milestones: snap.Milestones,
		Updates:    snap.Updates,
		Tasks:      tasks,
		Blockers:   blockers,
		Actions:    actions,
	}, nil
}

// research builds the project snapshot. The task sequence is always the
// loader's original rows; only summary, milestones, and updates come from
// the model.
func (p *Pipeline) research(ctx context.Context, tasks []project.Task, notes string) (project.Snapshot, error) {
	snap := project.Snapshot{
		Milestones: []string{},
		Updates:    []string{},
		Tasks:      tasks,
	}

	desc := describeProject(tasks, notes, p.maxChars)
	resp, err := p.chat(ctx, p.stages.Research, researchSystem, researchPrompt(desc))
	if err != nil {
		return snap, err
	}

	if parsed, ok := parseSnapshot(resp.Content); ok {
		snap.Summary = strings.TrimSpace(parsed.Summary)
		if parsed.Milestones != nil {
			snap.Milestones = parsed.Milestones
		}
		if parsed.Updates != nil {
			snap.Updates = parsed.Updates
		}
	} else {
		// Degrade: the whole response becomes the summary.
		p.logger.Warn("research response not parseable, using raw text as summary")
		snap.Summary = strings.TrimSpace(resp.Content)
	}
	if snap.Summary == "" {
		snap.Summary = fmt.Sprintf("Project has %d goals/tasks.", len(tasks))
	}
	return snap, nil
}

// detectBlockers enumerates blockers. The status-keyword scan seeds the
// prompt; the model's enumeration is the stage output. With no keyword
// candidates the model call is skipped entirely.
func (p *Pipeline) detectBlockers(ctx context.Context, snap project.Snapshot) ([]project.Blocker, error) {
	candidates := keywordBlockers(snap.Tasks)
	if len(candidates) == 0 {
		return []project.Blocker{}, nil
	}

	resp, err := p.chat(ctx, p.stages.Blockers, blockerSystem, blockerPrompt(snap, candidates, p.maxChars))
	if err != nil {
		return nil, err
	}

	blockers, ok := parseBlockers(resp.Content)
	if !ok {
		// Degrade: the raw text becomes a sentinel entry so the model's
		// risk analysis survives; the real-blocker sequence stays empty.
		p.logger.Warn("blocker response not parseable, keeping raw text as risk analysis")
		if text := strings.TrimSpace(resp.Content); text != "" {
			return []project.Blocker{{SeverityAnalysis: text}}, nil
		}
		return []project.Blocker{}, nil
	}
	if blockers == nil {
		blockers = []project.Blocker{}
	}
	return blockers, nil
}

// planActions produces the recommended next steps: deterministic follow-up
// lines per real blocker, then the model's plan appended in order.
func (p *Pipeline) planActions(ctx context.Context, snap project.Snapshot, blockers []project.Blocker) ([]string, error) {
	actions := followUpActions(blockers)

	resp, err := p.chat(ctx, p.stages.Actions, actionSystem, actionPrompt(snap, blockers, p.maxChars))
	if err != nil {
		return nil, err
	}

	if parsed, ok := parseActions(resp.Content); ok {
		actions = append(actions, parsed...)
	} else if text := strings.TrimSpace(resp.Content); text != "" {
		// Degrade: keep the model's plan as one opaque action item.
		p.logger.Warn("action response not parseable, appending raw text")
		actions = append(actions, text)
	}
	return actions, nil
}

func (p *Pipeline) chat(ctx context.Context, stage config.StageConfig, system, prompt string) (*provider.Response, error) {
	return p.provider.Chat(ctx, provider.ChatRequest{
		Model:       stage.Model,
		System:      system,
		Prompt:      prompt,
		Temperature: stage.Temperature,
		MaxTokens:   stage.MaxTokens,
	})
}
