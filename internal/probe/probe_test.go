package probe

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLookupMissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	f := Lookup(Tool{Name: "definitely-not-installed"})
	if f.Found {
		t.Fatal("expected tool to be reported missing")
	}
	if f.Path != "" {
		t.Fatalf("missing tool should have no path, got %q", f.Path)
	}
}

func TestLookupFindsToolOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable fixture requires POSIX permissions")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("PATH", dir)

	f := Lookup(Tool{Name: "ffmpeg"})
	if !f.Found {
		t.Fatal("expected tool to be found")
	}
	if f.Path != bin {
		t.Fatalf("path = %q, want %q", f.Path, bin)
	}
}

func TestAllPreservesOrder(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	tools := []Tool{{Name: "ffmpeg"}, {Name: "espeak"}}
	findings := All(tools)
	if len(findings) != 2 {
		t.Fatalf("expected two findings, got %d", len(findings))
	}
	if findings[0].Tool.Name != "ffmpeg" || findings[1].Tool.Name != "espeak" {
		t.Fatalf("order not preserved: %+v", findings)
	}
}
