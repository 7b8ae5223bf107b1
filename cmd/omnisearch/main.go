// Package main provides the entry point for the omnisearch CLI.
package main

import (
	"os"

	"github.com/omnisearch-dev/omnisearch/cmd/omnisearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
