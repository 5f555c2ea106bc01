// Package main provides the entry point for the spectre CLI tool
package main

import (
	"os"

	"github.com/sxs-collaboration/spectre-cli/cmd/spectre/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
