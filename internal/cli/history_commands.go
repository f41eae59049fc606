package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/content-studio/studioctl/internal/logs"
	store "github.com/content-studio/studioctl/internal/store/sqlite"
)

func runHistory(args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--project-dir": true, "-project-dir": true,
		"--state-dir": true, "-state-dir": true,
		"--limit": true, "-limit": true,
		"--run": true, "-run": true,
		"--json": false, "-json": false,
	})
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	var projectDir string
	var stateDir string
	var runID string
	var limit int
	var asJSON bool
	fs.StringVar(&projectDir, "project-dir", ".", "project directory")
	fs.StringVar(&stateDir, "state-dir", "", "state directory (default <project>/.studio)")
	fs.StringVar(&runID, "run", "", "show one run in detail, with its event log")
	fs.IntVar(&limit, "limit", 20, "max rows")
	fs.BoolVar(&asJSON, "json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: studioctl history [--project-dir=.] [--state-dir=...] [--run=<id>] [--limit=20] [--json]")
		return 1
	}

	projectDir, err := filepath.Abs(strings.TrimSpace(projectDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "history failed: resolve project dir: %v\n", err)
		return 1
	}
	if strings.TrimSpace(stateDir) == "" {
		stateDir = filepath.Join(projectDir, ".studio")
	}

	s, err := store.Open(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history failed: open state: %v\n", err)
		return 1
	}
	defer s.Close()

	if strings.TrimSpace(runID) != "" {
		return showRun(s, stateDir, strings.TrimSpace(runID), asJSON)
	}

	runs, err := s.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history failed: %v\n", err)
		return 1
	}
	if asJSON {
		b, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(b))
		return 0
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s\t%s\t%s\t%d warning(s)", r.RunID, r.Status, r.StartedAt, r.Warnings)
		if r.LastError != "" {
			line += "\t" + r.LastError
		}
		fmt.Println(line)
	}
	return 0
}

// showRun prints one run's record together with its JSONL event log. A run
// without an event log still prints; the log is best-effort on the write side.
func showRun(s *store.Store, stateDir, runID string, asJSON bool) int {
	run, err := s.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history failed: %v\n", err)
		return 1
	}
	events, err := logs.ReadEvents(stateDir, runID)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "history failed: %v\n", err)
		return 1
	}

	if asJSON {
		detail := struct {
			Run    store.RunRecord `json:"run"`
			Events []logs.Event    `json:"events"`
		}{Run: run, Events: events}
		b, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Println(string(b))
		return 0
	}

	fmt.Printf("run:      %s\n", run.RunID)
	fmt.Printf("status:   %s\n", run.Status)
	if run.PythonVersion != "" {
		fmt.Printf("python:   %s\n", run.PythonVersion)
	}
	fmt.Printf("warnings: %d\n", run.Warnings)
	fmt.Printf("started:  %s\n", run.StartedAt)
	if run.EndedAt != "" {
		fmt.Printf("ended:    %s\n", run.EndedAt)
	}
	if run.LastError != "" {
		fmt.Printf("error:    %s\n", run.LastError)
	}
	if len(events) == 0 {
		return 0
	}
	fmt.Println("events:")
	for _, e := range events {
		line := fmt.Sprintf("  %s  [%s] %s", e.Timestamp, strings.ToUpper(e.Status), e.Step)
		if e.Message != "" {
			line += ": " + e.Message
		}
		if e.Error != "" {
			line += ": " + e.Error
		}
		fmt.Println(line)
	}
	return 0
}
