package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List discovered Worker nodes and exit",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fmt.Println("Scanning LAN for Worker nodes...")
	workers := discoverWorkers(ctx, cfg.Discovery.Port, cfg.Worker.Port, logger)
	if len(workers) == 0 {
		fmt.Println("No Worker nodes found.")
		return nil
	}
	fmt.Printf("Found %d Worker node(s):\n", len(workers))
	for _, w := range workers {
		status := probeWorkerStatus(ctx, w, cfg.Worker.Port)
		fmt.Printf("  - %s: %s\n", w, status)
	}
	return nil
}
