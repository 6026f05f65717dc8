// Package main provides the entry point for the ollama4truth binary.
package main

import (
	"os"

	"github.com/lucasfrag/ollama4truth/cmd/ollama4truth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
