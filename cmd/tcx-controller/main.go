// Package main is the entry point for tcx-controller, the batch scheduler
// for the transcoder cluster.
package main

import (
	"os"

	"github.com/ybyllc/transcoder-cluster/cmd/tcx-controller/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
