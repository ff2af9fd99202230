// Package main is the entry point for the break-even CLI.
package main

import (
	"os"

	"github.com/iwvelando/break-even/cmd/break-even/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
