package main

import (
	"os"

	"github.com/content-studio/studioctl/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
