// Package probe checks for optional external tools on PATH.
//
// Probes never invoke the tool; presence on the search path is the whole
// check. Absence is an expected outcome, reported as a warning with install
// hints, and never changes the process exit status.
package probe

import "os/exec"

// Tool is an optional external binary with per-platform install hints.
type Tool struct {
	Name  string
	Hints []string
}

// Finding is the outcome of probing one tool.
type Finding struct {
	Tool  Tool
	Found bool
	Path  string
}

// Lookup probes a single tool.
func Lookup(t Tool) Finding {
	path, err := exec.LookPath(t.Name)
	if err != nil {
		return Finding{Tool: t, Found: false}
	}
	return Finding{Tool: t, Found: true, Path: path}
}

// All probes every tool in order.
func All(tools []Tool) []Finding {
	out := make([]Finding, 0, len(tools))
	for _, t := range tools {
		out = append(out, Lookup(t))
	}
	return out
}
