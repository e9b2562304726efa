package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ybyllc/transcoder-cluster/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect past task history",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded task outcomes",
	Long: `list reads the task history database (--history-db) and prints
completed/failed tasks, newest first. This is a read-only view for
operator troubleshooting; the Controller never consults this history
to resume or re-drive a batch.`,
	RunE: runAuditList,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().Int("limit", 50, "maximum number of entries to show")
	auditListCmd.Flags().Int("offset", 0, "number of entries to skip")
}

func runAuditList(cmd *cobra.Command, _ []string) error {
	store, err := audit.Open(historyDBPath(cmd))
	if err != nil {
		return fmt.Errorf("opening task history database: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	entries, total, err := store.History(context.Background(), offset, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No recorded task history.")
		return nil
	}

	fmt.Printf("%-36s %-8s %-8s %-20s %s\n", "TASK ID", "STATUS", "ATTEMPTS", "WORKER", "OUTPUT")
	for _, e := range entries {
		fmt.Printf("%-36s %-8s %-8d %-20s %s\n", e.TaskID, e.Status, e.Attempts, e.Worker, e.OutputFile)
		if e.ErrorMsg != "" {
			fmt.Printf("    error: %s\n", e.ErrorMsg)
		}
	}
	fmt.Printf("\n%d of %d total\n", len(entries), total)
	return nil
}
