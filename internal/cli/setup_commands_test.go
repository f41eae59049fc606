package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	store "github.com/content-studio/studioctl/internal/store/sqlite"
)

const fakePythonScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "Python 3.11.2"
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
  /bin/mkdir -p "$3/bin"
  /bin/cp "$0" "$3/bin/python"
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "pip" ]; then
  exit 0
fi
exit 1
`

func prepareProject(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script requires a POSIX shell")
	}
	binDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte(fakePythonScript), 0o755); err != nil {
		t.Fatalf("write fake interpreter: %v", err)
	}
	t.Setenv("PATH", binDir)

	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, "requirements.txt"), []byte("anthropic\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, ".env.example"), []byte("ANTHROPIC_API_KEY=\n"), 0o644); err != nil {
		t.Fatalf("write env template: %v", err)
	}
	return projectDir
}

func TestSetupCommandSucceedsDespiteMissingOptionalTools(t *testing.T) {
	projectDir := prepareProject(t)
	if rc := Execute([]string{"setup", "--project-dir", projectDir}); rc != 0 {
		t.Fatalf("setup rc = %d, want 0", rc)
	}
	for _, rel := range []string{".venv", "content_outputs", ".env", ".studio"} {
		if _, err := os.Stat(filepath.Join(projectDir, rel)); err != nil {
			t.Fatalf("expected %s to exist: %v", rel, err)
		}
	}
}

func TestSetupCommandFailsWithoutTemplate(t *testing.T) {
	projectDir := prepareProject(t)
	if err := os.Remove(filepath.Join(projectDir, ".env.example")); err != nil {
		t.Fatalf("remove template: %v", err)
	}
	if rc := Execute([]string{"setup", "--project-dir", projectDir}); rc != 1 {
		t.Fatalf("setup rc = %d, want 1", rc)
	}
}

func TestDoctorCommandJSONExitsZeroOnWarnings(t *testing.T) {
	projectDir := prepareProject(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	if rc := Execute([]string{"doctor", "--project-dir", projectDir, "--json"}); rc != 0 {
		t.Fatalf("doctor rc = %d, want 0 (warnings are not failures)", rc)
	}
}

func TestHistoryCommandAfterSetup(t *testing.T) {
	projectDir := prepareProject(t)
	if rc := Execute([]string{"setup", "--project-dir", projectDir}); rc != 0 {
		t.Fatal("setup should succeed before history")
	}
	if rc := Execute([]string{"history", "--project-dir", projectDir}); rc != 0 {
		t.Fatalf("history rc = %d, want 0", rc)
	}
}

func TestHistoryRunDetail(t *testing.T) {
	projectDir := prepareProject(t)
	if rc := Execute([]string{"setup", "--project-dir", projectDir}); rc != 0 {
		t.Fatal("setup should succeed before history")
	}

	s, err := store.Open(filepath.Join(projectDir, ".studio"))
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	runs, err := s.ListRuns(1)
	s.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns() = %v, %v; want one run", runs, err)
	}

	if rc := Execute([]string{"history", "--project-dir", projectDir, "--run", runs[0].RunID}); rc != 0 {
		t.Fatalf("history --run rc = %d, want 0", rc)
	}
	if rc := Execute([]string{"history", "--project-dir", projectDir, "--run", "no-such-run"}); rc != 1 {
		t.Fatalf("history --run with unknown id rc = %d, want 1", rc)
	}
}

func TestSetupRejectsStrayArguments(t *testing.T) {
	if rc := Execute([]string{"setup", "stray"}); rc != 1 {
		t.Fatalf("rc = %d, want 1", rc)
	}
}
