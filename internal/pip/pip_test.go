package pip

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestReadManifestSkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	content := `# content studio deps
anthropic>=0.40

mcp
  # indented comment
python-dotenv==1.0.1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	specs, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	want := []string{"anthropic>=0.40", "mcp", "python-dotenv==1.0.1"}
	if len(specs) != len(want) {
		t.Fatalf("specs = %v, want %v", specs, want)
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Fatalf("specs[%d] = %q, want %q", i, specs[i], want[i])
		}
	}
}

func TestInstallRequirementsMissingManifest(t *testing.T) {
	inst := New("python3")
	err := inst.InstallRequirements(context.Background(), filepath.Join(t.TempDir(), "requirements.txt"))
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if !strings.Contains(err.Error(), "manifest not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstallerInvokesPipModule(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fakepython")
	argsFile := filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\necho \"$@\" >> \"" + argsFile + "\"\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake interpreter: %v", err)
	}
	manifest := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(manifest, []byte("mcp\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	inst := New(bin)
	if err := inst.UpgradeSelf(context.Background()); err != nil {
		t.Fatalf("UpgradeSelf() error = %v", err)
	}
	if err := inst.InstallRequirements(context.Background(), manifest); err != nil {
		t.Fatalf("InstallRequirements() error = %v", err)
	}

	b, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two pip invocations, got %v", lines)
	}
	if lines[0] != "-m pip install --upgrade pip" {
		t.Fatalf("upgrade invocation = %q", lines[0])
	}
	if lines[1] != "-m pip install -r "+manifest {
		t.Fatalf("install invocation = %q", lines[1])
	}
}

func TestInstallerPropagatesFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fakepython")
	script := "#!/bin/sh\nexit 2\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake interpreter: %v", err)
	}
	if err := New(bin).UpgradeSelf(context.Background()); err == nil {
		t.Fatal("expected non-zero pip exit to propagate")
	}
}
