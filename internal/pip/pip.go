// Package pip drives the sandbox's package installer.
//
// Both operations run the venv's own interpreter with `-m pip`, so nothing
// here depends on shell activation or the system pip.
package pip

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Installer invokes pip through a specific interpreter binary.
type Installer struct {
	PythonBin string

	// Stdout/Stderr receive pip's own output. Nil means inherit the process
	// streams so installer progress stays visible to the operator.
	Stdout io.Writer
	Stderr io.Writer
}

func New(pythonBin string) *Installer {
	return &Installer{PythonBin: pythonBin}
}

// UpgradeSelf upgrades pip inside the sandbox.
func (i *Installer) UpgradeSelf(ctx context.Context) error {
	if err := i.run(ctx, "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("upgrade pip: %w", err)
	}
	return nil
}

// InstallRequirements installs every package listed in the manifest file.
func (i *Installer) InstallRequirements(ctx context.Context, manifestPath string) error {
	if _, err := os.Stat(manifestPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("manifest not found: %s", manifestPath)
		}
		return fmt.Errorf("stat manifest: %w", err)
	}
	if err := i.run(ctx, "install", "-r", manifestPath); err != nil {
		return fmt.Errorf("install requirements from %s: %w", manifestPath, err)
	}
	return nil
}

func (i *Installer) run(ctx context.Context, args ...string) error {
	full := append([]string{"-m", "pip"}, args...)
	cmd := exec.CommandContext(ctx, i.PythonBin, full...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if i.Stdout != nil {
		cmd.Stdout = i.Stdout
	}
	if i.Stderr != nil {
		cmd.Stderr = i.Stderr
	}
	return cmd.Run()
}

// ReadManifest returns the package specifiers from a requirements file,
// skipping blank lines and comments. Used for progress reporting only; the
// actual install hands the whole file to pip.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var specs []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return specs, nil
}
