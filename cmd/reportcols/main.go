// Package main is the reportcols command.
package main

import (
	"os"

	"github.com/leapstack-labs/reportcols/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
