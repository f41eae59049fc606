// Package bootstrap runs the Content Studio environment setup: version gate,
// venv provisioning, dependency install, optional tool probes, output
// directory, and secrets seeding, in that order.
//
// Steps 1-3 and a missing secrets template are fatal; everything else is at
// worst a warning. Every filesystem mutation is idempotent, so rerunning
// setup never destroys or duplicates prior state.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/content-studio/studioctl/internal/config"
	"github.com/content-studio/studioctl/internal/logs"
	"github.com/content-studio/studioctl/internal/pip"
	"github.com/content-studio/studioctl/internal/probe"
	"github.com/content-studio/studioctl/internal/pyver"
	"github.com/content-studio/studioctl/internal/python"
	"github.com/content-studio/studioctl/internal/secrets"
	store "github.com/content-studio/studioctl/internal/store/sqlite"
	"github.com/content-studio/studioctl/internal/venv"
)

const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type Report struct {
	RunID         string  `json:"runId,omitempty"`
	PythonVersion string  `json:"pythonVersion,omitempty"`
	Checks        []Check `json:"checks"`
}

func (r Report) Warnings() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == StatusWarn {
			n++
		}
	}
	return n
}

type Options struct {
	ProjectDir string
	StateDir   string
	Config     config.Config

	// Stdout receives progress lines; nil means os.Stdout.
	Stdout io.Writer
}

// Setup executes the full bootstrap. The returned report always carries the
// checks completed so far, including the failing one.
func Setup(ctx context.Context, opts Options) (Report, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	cfg := opts.Config
	runID := makeRunID()
	report := Report{RunID: runID}

	rec := newRecorder(opts.StateDir, runID)
	rec.start()

	fail := func(step string, err error) (Report, error) {
		report.Checks = append(report.Checks, Check{Name: step, Status: StatusFail, Detail: err.Error()})
		fmt.Fprintf(out, "[FAIL] %s: %v\n", step, err)
		rec.event(step, StatusFail, "", err)
		rec.finish("failed", report, err)
		return report, err
	}
	pass := func(step, detail string) {
		report.Checks = append(report.Checks, Check{Name: step, Status: StatusPass, Detail: detail})
		fmt.Fprintf(out, "[OK] %s: %s\n", step, detail)
		rec.event(step, StatusPass, detail, nil)
	}
	warn := func(step, detail string) {
		report.Checks = append(report.Checks, Check{Name: step, Status: StatusWarn, Detail: detail})
		fmt.Fprintf(out, "[WARN] %s: %s\n", step, detail)
		rec.event(step, StatusWarn, detail, nil)
	}

	// Step 1: version gate.
	minVersion, err := pyver.Parse(cfg.MinVersion)
	if err != nil {
		return fail("python", fmt.Errorf("minimum version: %w", err))
	}
	interp, err := python.Find(ctx, cfg.Interpreters)
	if err != nil {
		return fail("python", err)
	}
	if !pyver.AtLeast(interp.Version, minVersion) {
		return fail("python", fmt.Errorf("Python %s or newer is required, found %s (%s)", minVersion, interp.Version, interp.Path))
	}
	report.PythonVersion = interp.Version.String()
	pass("python", fmt.Sprintf("Python %s (%s)", interp.Version, interp.Path))

	// Step 2: sandbox.
	venvDir := filepath.Join(opts.ProjectDir, cfg.VenvDir)
	venvRes, err := venv.Provision(ctx, interp.Path, venvDir, out)
	if err != nil {
		return fail("venv", err)
	}
	if venvRes.Created {
		pass("venv", fmt.Sprintf("created %s", cfg.VenvDir))
	} else {
		pass("venv", fmt.Sprintf("%s already exists", cfg.VenvDir))
	}

	// Step 3: dependencies, via the venv's own interpreter.
	manifestPath := filepath.Join(opts.ProjectDir, cfg.Requirements)
	installer := pip.New(venv.PythonPath(venvDir))
	installer.Stdout = out
	installer.Stderr = out
	if err := installer.UpgradeSelf(ctx); err != nil {
		return fail("deps", err)
	}
	if err := installer.InstallRequirements(ctx, manifestPath); err != nil {
		return fail("deps", err)
	}
	detail := fmt.Sprintf("installed from %s", cfg.Requirements)
	if specs, err := pip.ReadManifest(manifestPath); err == nil {
		detail = fmt.Sprintf("%d package(s) installed from %s", len(specs), cfg.Requirements)
	}
	pass("deps", detail)

	// Step 4: optional tool probes. Never fatal.
	for _, f := range probe.All(toolsFromConfig(cfg)) {
		if f.Found {
			pass(f.Tool.Name, fmt.Sprintf("found at %s", f.Path))
			continue
		}
		warn(f.Tool.Name, "not found on PATH")
		for _, hint := range f.Tool.Hints {
			fmt.Fprintf(out, "       %s\n", hint)
		}
	}

	// Step 5: output directory.
	outputDir := filepath.Join(opts.ProjectDir, cfg.OutputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		warn("outputs", fmt.Sprintf("create %s: %v", cfg.OutputDir, err))
	} else {
		pass("outputs", fmt.Sprintf("%s ready", cfg.OutputDir))
	}

	// Step 6: secrets. A missing template is fatal.
	envPath := filepath.Join(opts.ProjectDir, cfg.EnvFile)
	templatePath := filepath.Join(opts.ProjectDir, cfg.EnvTemplate)
	created, err := secrets.EnsureEnvFile(envPath, templatePath)
	if err != nil {
		return fail("secrets", err)
	}
	if created {
		pass("secrets", fmt.Sprintf("%s created from %s", cfg.EnvFile, cfg.EnvTemplate))
		fmt.Fprintf(out, "       remember to set %s in %s\n", cfg.APIKeyEnv, cfg.EnvFile)
	} else {
		pass("secrets", fmt.Sprintf("%s already exists", cfg.EnvFile))
	}

	if err := ensureGitignore(filepath.Join(opts.ProjectDir, ".gitignore"), cfg); err != nil {
		warn("gitignore", err.Error())
	}

	rec.finish("succeeded", report, nil)
	return report, nil
}

// Doctor runs the non-mutating checks only: interpreter gate, venv and
// manifest presence, optional tools, and the API key.
func Doctor(ctx context.Context, opts Options) (Report, error) {
	cfg := opts.Config
	report := Report{}
	add := func(name, status, detail string) {
		report.Checks = append(report.Checks, Check{Name: name, Status: status, Detail: detail})
	}

	minVersion, err := pyver.Parse(cfg.MinVersion)
	if err != nil {
		return report, fmt.Errorf("minimum version: %w", err)
	}
	interp, err := python.Find(ctx, cfg.Interpreters)
	switch {
	case err != nil:
		add("python", StatusFail, err.Error())
	case !pyver.AtLeast(interp.Version, minVersion):
		add("python", StatusFail, fmt.Sprintf("Python %s or newer is required, found %s", minVersion, interp.Version))
	default:
		report.PythonVersion = interp.Version.String()
		add("python", StatusPass, fmt.Sprintf("Python %s (%s)", interp.Version, interp.Path))
	}

	venvDir := filepath.Join(opts.ProjectDir, cfg.VenvDir)
	if st, err := os.Stat(venvDir); err == nil && st.IsDir() {
		add("venv", StatusPass, cfg.VenvDir+" present")
	} else {
		add("venv", StatusWarn, cfg.VenvDir+" missing (run: studioctl setup)")
	}

	manifestPath := filepath.Join(opts.ProjectDir, cfg.Requirements)
	if specs, err := pip.ReadManifest(manifestPath); err != nil {
		add("deps", StatusFail, fmt.Sprintf("manifest not readable: %v", err))
	} else {
		add("deps", StatusPass, fmt.Sprintf("%d package(s) declared in %s", len(specs), cfg.Requirements))
	}

	for _, f := range probe.All(toolsFromConfig(cfg)) {
		if f.Found {
			add(f.Tool.Name, StatusPass, f.Path)
		} else {
			add(f.Tool.Name, StatusWarn, "not found on PATH")
		}
	}

	envPath := filepath.Join(opts.ProjectDir, cfg.EnvFile)
	if secrets.KeyPresent(cfg.APIKeyEnv, envPath) {
		add("api_key", StatusPass, cfg.APIKeyEnv+" is set")
	} else {
		add("api_key", StatusWarn, cfg.APIKeyEnv+" not set (env or "+cfg.EnvFile+")")
	}

	failed := make([]string, 0, 4)
	for _, c := range report.Checks {
		if c.Status == StatusFail {
			failed = append(failed, c.Name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return report, fmt.Errorf("failing checks: %s", strings.Join(failed, ", "))
	}
	return report, nil
}

func toolsFromConfig(cfg config.Config) []probe.Tool {
	out := make([]probe.Tool, 0, len(cfg.OptionalTools))
	for _, t := range cfg.OptionalTools {
		out = append(out, probe.Tool{Name: t.Name, Hints: t.Hints})
	}
	return out
}

func ensureGitignore(path string, cfg config.Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	content := "# Content Studio local state\n" +
		cfg.VenvDir + "/\n" +
		cfg.OutputDir + "/\n" +
		".studio/\n" +
		"\n# Local secrets (never commit)\n" +
		cfg.EnvFile + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}

func makeRunID() string {
	now := time.Now().UTC()
	return now.Format("20060102t150405") + fmt.Sprintf("%09d", now.Nanosecond())
}

// recorder mirrors progress into the event log and run store. History is
// best-effort: a broken state directory downgrades to a warning on stderr
// instead of blocking the bootstrap itself.
type recorder struct {
	stateDir string
	runID    string
	store    *store.Store
}

func newRecorder(stateDir, runID string) *recorder {
	r := &recorder{stateDir: stateDir, runID: runID}
	if stateDir == "" {
		return r
	}
	s, err := store.Open(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open run history: %v\n", err)
		return r
	}
	r.store = s
	return r
}

func (r *recorder) start() {
	if r.store == nil {
		return
	}
	_ = r.store.InsertRun(store.RunRecord{
		RunID:     r.runID,
		Status:    "running",
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (r *recorder) event(step, status, detail string, err error) {
	if r.stateDir == "" {
		return
	}
	e := logs.Event{Step: step, Status: status, Message: detail}
	if err != nil {
		e.Error = err.Error()
	}
	_ = logs.AppendEvent(r.stateDir, r.runID, e)
}

func (r *recorder) finish(status string, report Report, cause error) {
	if r.store == nil {
		return
	}
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	_ = r.store.CompleteRun(r.runID, status, report.PythonVersion, report.Warnings(), lastError)
	_ = r.store.Close()
	r.store = nil
}
