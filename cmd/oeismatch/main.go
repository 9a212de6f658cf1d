// Package main provides the entry point for the oeismatch CLI.
package main

import (
	"os"

	"github.com/rahidz/oeismatcher/cmd/oeismatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
