package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/content-studio/studioctl/internal/bootstrap"
	"github.com/content-studio/studioctl/internal/config"
	"github.com/content-studio/studioctl/internal/secrets"
)

func runSetup(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--project-dir": true, "-project-dir": true,
		"--state-dir": true, "-state-dir": true,
		"--save-key": false, "-save-key": false,
	})
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	var projectDir string
	var stateDir string
	var saveKey bool
	fs.StringVar(&projectDir, "project-dir", ".", "project directory")
	fs.StringVar(&stateDir, "state-dir", "", "state directory (default <project>/.studio)")
	fs.BoolVar(&saveKey, "save-key", false, "prompt for the API key and store it in the env file (TTY only)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: studioctl setup [--project-dir=.] [--state-dir=...] [--save-key]")
		return 1
	}

	projectDir, err := filepath.Abs(strings.TrimSpace(projectDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: resolve project dir: %v\n", err)
		return 1
	}
	if strings.TrimSpace(stateDir) == "" {
		stateDir = filepath.Join(projectDir, ".studio")
	}

	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		return 1
	}

	report, err := bootstrap.Setup(ctx, bootstrap.Options{
		ProjectDir: projectDir,
		StateDir:   stateDir,
		Config:     cfg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		return 1
	}

	envPath := filepath.Join(projectDir, cfg.EnvFile)
	if saveKey && !secrets.KeyPresent(cfg.APIKeyEnv, envPath) {
		if err := promptAndSaveKey(cfg.APIKeyEnv, envPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	printSetupSummary(cfg, report.Warnings())
	return 0
}

func promptAndSaveKey(keyEnv, envPath string) error {
	if !isInteractiveTerminal() {
		return fmt.Errorf("--save-key requires a TTY; edit %s instead", envPath)
	}
	key, err := promptSecret(os.Stderr, fmt.Sprintf("Enter %s (hidden input): ", keyEnv))
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("no key entered; edit %s instead", envPath)
	}
	if err := secrets.SetKey(envPath, keyEnv, key); err != nil {
		return err
	}
	fmt.Printf("%s saved to %s\n", keyEnv, envPath)
	return nil
}

func printSetupSummary(cfg config.Config, warnings int) {
	fmt.Println()
	if warnings > 0 {
		fmt.Printf("setup complete with %d warning(s)\n", warnings)
	} else {
		fmt.Println("setup complete")
	}
	activate := filepath.ToSlash(filepath.Join(cfg.VenvDir, "bin", "activate"))
	fmt.Println()
	fmt.Println("next steps:")
	fmt.Printf("  source %s\n", activate)
	fmt.Printf("  export %s=...   (or edit %s)\n", cfg.APIKeyEnv, cfg.EnvFile)
	fmt.Println("  python content_studio_client.py")
	fmt.Println()
	fmt.Printf("generated content lands in %s/\n", cfg.OutputDir)
}

func isInteractiveTerminal() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}

func promptSecret(w *os.File, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	if isInteractiveTerminal() && term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
