// Package python locates a host Python interpreter and reads its version.
package python

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/content-studio/studioctl/internal/pyver"
)

// Interpreter is a resolved host Python.
type Interpreter struct {
	Name    string
	Path    string
	Version pyver.Version
}

// Find probes the candidate binary names in order and returns the first one
// that is on PATH and reports a parsable version.
func Find(ctx context.Context, candidates []string) (Interpreter, error) {
	var errs []string
	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: not on PATH", name))
			continue
		}
		v, err := QueryVersion(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		return Interpreter{Name: name, Path: path, Version: v}, nil
	}
	if len(errs) == 0 {
		return Interpreter{}, fmt.Errorf("no interpreter candidates configured")
	}
	return Interpreter{}, fmt.Errorf("no usable Python interpreter (%s)", strings.Join(errs, "; "))
}

// QueryVersion runs `<bin> --version` and parses the reported version.
// Python 2 printed the banner on stderr, so both streams are inspected.
func QueryVersion(ctx context.Context, bin string) (pyver.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--version")
	var out bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		msg := firstLine(errBuf.String())
		if msg == "" {
			msg = err.Error()
		}
		return pyver.Version{}, fmt.Errorf("query version: %s", msg)
	}
	banner := firstLine(out.String())
	if banner == "" {
		banner = firstLine(errBuf.String())
	}
	return ParseBanner(banner)
}

// ParseBanner extracts the version from a "Python X.Y.Z" banner line.
func ParseBanner(banner string) (pyver.Version, error) {
	fields := strings.Fields(strings.TrimSpace(banner))
	if len(fields) < 2 || !strings.EqualFold(fields[0], "python") {
		return pyver.Version{}, fmt.Errorf("unexpected version output %q", banner)
	}
	v, err := pyver.Parse(fields[1])
	if err != nil {
		return pyver.Version{}, fmt.Errorf("unexpected version output %q: %w", banner, err)
	}
	return v, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
