package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/content-studio/studioctl/internal/bootstrap"
	"github.com/content-studio/studioctl/internal/config"
)

func runDoctor(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--project-dir": true, "-project-dir": true,
		"--json": false, "-json": false,
	})
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	var projectDir string
	var asJSON bool
	fs.StringVar(&projectDir, "project-dir", ".", "project directory")
	fs.BoolVar(&asJSON, "json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: studioctl doctor [--project-dir=.] [--json]")
		return 1
	}

	projectDir, err := filepath.Abs(strings.TrimSpace(projectDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "doctor failed: resolve project dir: %v\n", err)
		return 1
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doctor failed: %v\n", err)
		return 1
	}

	report, doctorErr := bootstrap.Doctor(ctx, bootstrap.Options{
		ProjectDir: projectDir,
		Config:     cfg,
	})
	if asJSON {
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(b))
	} else {
		printReport(report)
	}
	if doctorErr != nil {
		fmt.Fprintf(os.Stderr, "doctor failed: %v\n", doctorErr)
		return 1
	}
	return 0
}

func printReport(report bootstrap.Report) {
	fmt.Println("doctor:")
	for _, c := range report.Checks {
		prefix := "OK"
		switch c.Status {
		case bootstrap.StatusWarn:
			prefix = "WARN"
		case bootstrap.StatusFail:
			prefix = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", prefix, c.Name, c.Detail)
	}
	if report.PythonVersion != "" {
		fmt.Printf("python version: %s\n", report.PythonVersion)
	}
}
