// Package venv provisions the project-local Python sandbox.
package venv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Result reports what Provision did.
type Result struct {
	Dir     string
	Created bool
}

// Provision creates the venv at dir using the given interpreter binary.
// An existing directory is left untouched; it is never recreated.
// Interpreter stdout goes to out; nil means os.Stdout.
func Provision(ctx context.Context, pythonBin, dir string, out io.Writer) (Result, error) {
	if st, err := os.Stat(dir); err == nil {
		if !st.IsDir() {
			return Result{}, fmt.Errorf("%s exists but is not a directory", dir)
		}
		return Result{Dir: dir, Created: false}, nil
	} else if !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("stat %s: %w", dir, err)
	}

	if out == nil {
		out = os.Stdout
	}
	cmd := exec.CommandContext(ctx, pythonBin, "-m", "venv", dir)
	var errBuf bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		msg := firstLine(errBuf.String())
		if msg != "" {
			return Result{}, fmt.Errorf("create venv %s: %s: %w", dir, msg, err)
		}
		return Result{}, fmt.Errorf("create venv %s: %w", dir, err)
	}
	return Result{Dir: dir, Created: true}, nil
}

// PythonPath returns the sandbox's own interpreter, so later installs run
// inside the venv without relying on shell activation.
func PythonPath(dir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "Scripts", "python.exe")
	}
	return filepath.Join(dir, "bin", "python")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
