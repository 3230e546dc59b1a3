package main

import "github.com/dela-run/dela/internal/cli"

// Set at build time via -ldflags.
var version = "dev" //nolint:unused

func main() {
	cli.Execute()
}
