package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ybyllc/transcoder-cluster/internal/preset"
)

var listPresetsCmd = &cobra.Command{
	Use:   "list-presets",
	Short: "Enumerate available transcode presets",
	RunE: func(_ *cobra.Command, _ []string) error {
		printPresets()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listPresetsCmd)
}

func printPresets() {
	fmt.Println("\nAvailable transcode presets:")
	fmt.Println(strings.Repeat("-", 50))
	descriptions := preset.Descriptions()
	for _, name := range preset.List() {
		fmt.Printf("  %-25s - %s\n", name, descriptions[name])
	}
	fmt.Println()
}
