// Package main is the entry point for blockprof.
package main

import (
	"fmt"
	"os"

	"github.com/onegii/go-blockprof/blockprof"
	"github.com/onegii/go-blockprof/internal/cli"
)

func main() {
	// start-up time shows up as the first block of the report
	blockprof.MarkBootstrapStart()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
