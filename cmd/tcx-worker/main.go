// Package main is the entry point for tcx-worker, the single-node ffmpeg
// execution daemon of the transcoder cluster.
package main

import (
	"os"

	"github.com/ybyllc/transcoder-cluster/cmd/tcx-worker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
