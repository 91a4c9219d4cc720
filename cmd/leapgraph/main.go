// Package main provides the CLI for the leapgraph lineage engine.
package main

import (
	"os"

	"github.com/leapstack-labs/leapgraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
