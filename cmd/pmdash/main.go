// Command pmdash is the pmdash CLI. It runs the analysis pipeline against a
// local spreadsheet and renders the result in the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/pmdash/analysis"
	"github.com/GoCodeAlone/pmdash/config"
	"github.com/GoCodeAlone/pmdash/internal/version"
	"github.com/GoCodeAlone/pmdash/project"
	"github.com/GoCodeAlone/pmdash/provider"
	"github.com/GoCodeAlone/pmdash/provider/mock"
	"github.com/GoCodeAlone/pmdash/sheet"
)

var (
	configFile string
	asJSON     bool
	notes      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pmdash",
		Short: "pmdash - AI-assisted project status analysis",
		Long: `pmdash analyzes a spreadsheet of project tasks and produces a status
summary: milestones, blockers and risks, and a recommended action plan.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file path")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.xlsx>",
		Short: "Analyze a project spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON result")
	analyzeCmd.Flags().StringVar(&notes, "notes", "", "free-text project notes to include in the analysis")
	rootCmd.AddCommand(analyzeCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("pmdash %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.BuildDate)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.FromEnv()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	tasks, err := sheet.Load(f)
	if err != nil {
		return err
	}

	var backend provider.Provider
	if cfg.Provider.Name == "mock" {
		backend = mock.New()
	} else {
		backend, err = provider.New(cfg.Provider.Name, cfg.Provider.APIKey, cfg.Provider.BaseURL)
		if err != nil {
			return err
		}
	}

	result, err := analysis.New(backend, cfg, nil).Run(cmd.Context(), tasks, notes)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	render(result)
	return nil
}

// render prints a human-readable report.
func render(result *project.Result) {
	title := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgWhite, color.Bold)

	title.Println("Project Status")
	fmt.Println(result.Summary)
	fmt.Println()

	if len(result.Milestones) > 0 {
		section.Println("Milestones")
		for _, m := range result.Milestones {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	section.Println("Tasks")
	for _, t := range result.Tasks {
		marker := color.GreenString("●")
		if project.BlockedStatus(t.Status) {
			marker = color.RedString("●")
		}
		fmt.Printf("  %s %s — %s (%s, due %s)\n", marker, t.Description, t.Status, t.Owner, t.DueDate)
	}
	fmt.Println()

	section.Println("Blockers & Risks")
	real := project.RealBlockers(result.Blockers)
	if len(real) == 0 {
		fmt.Println("  No blockers detected.")
	}
	for _, b := range real {
		color.Red("  ! %s — %s (%s, due %s)", b.Task, b.Reason, b.Owner, b.Due)
		if b.SeverityAnalysis != "" {
			fmt.Printf("    %s\n", b.SeverityAnalysis)
		}
	}
	fmt.Println()

	section.Println("Action Plan")
	for i, a := range result.Actions {
		fmt.Printf("  %d. %s\n", i+1, a)
	}
}
