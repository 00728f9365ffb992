// Package main is the entry point for the mpsim CLI.
package main

import (
	"os"

	"go-microplastic-inspector/cmd/mpsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
