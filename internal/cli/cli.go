// Package cli is the studioctl command surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

func Execute(args []string) int {
	ctx := context.Background()
	if len(args) == 0 {
		// Bare invocation is the canonical bootstrap path.
		return runSetup(ctx, nil)
	}
	cmd := args[0]
	switch cmd {
	case "setup":
		return runSetup(ctx, args[1:])
	case "doctor":
		return runDoctor(ctx, args[1:])
	case "history":
		return runHistory(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return 1
	}
}

func reorderFlags(args []string, valueFlags map[string]bool) []string {
	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			if takesValue(a, valueFlags) && !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, a)
	}
	return append(flags, positionals...)
}

func takesValue(flagToken string, valueFlags map[string]bool) bool {
	if valueFlags[flagToken] {
		return true
	}
	if eq := strings.Index(flagToken, "="); eq > 0 {
		return valueFlags[flagToken[:eq]]
	}
	return false
}

func printUsage() {
	fmt.Print(`studioctl - Content Studio development environment bootstrapper

commands:
  setup   [--project-dir=.] [--state-dir=<project>/.studio] [--save-key]
          run the full bootstrap: Python version gate, .venv, pip install,
          optional tool probes, content_outputs/, and .env seeding
          (also the default when studioctl is invoked with no arguments)
  doctor  [--project-dir=.] [--json]
          report environment health without changing anything
  history [--project-dir=.] [--state-dir=...] [--run=<id>] [--limit=20] [--json]
          list previous setup runs, or show one run with its event log
  help
`)
}
