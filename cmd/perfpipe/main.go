// Package main is the entrypoint for the perfpipe CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/perfpipe/cmd"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/iocache"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err == nil {
		return
	}
	if contract.IsUsageError(err) {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\nRun 'perfpipe --help' for usage.\n", err)
		os.Exit(1)
	}
	contract.LogFatal("perfpipe", err)
}
