package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ybyllc/transcoder-cluster/internal/audit"
	"github.com/ybyllc/transcoder-cluster/internal/models"
	"github.com/ybyllc/transcoder-cluster/internal/preset"
	"github.com/ybyllc/transcoder-cluster/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a single transcode task to the cluster",
	Long: `run is a thin single-task wrapper around the batch scheduler: it
discovers Worker nodes, submits one file, waits for completion, and
reports the result.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "input file path (required)")
	runCmd.Flags().StringP("output", "o", "", "output file path (default: <input>_transcoded<ext>)")
	runCmd.Flags().StringP("preset", "p", "", "named transcode preset")
	runCmd.Flags().StringP("args", "a", "", `custom ffmpeg args, e.g. "-c:v libx265 -crf 28"`)
	runCmd.Flags().StringP("worker", "w", "", "target Worker IP (default: auto-select from discovery)")
	runCmd.Flags().Int("max-attempts", 3, "total attempts before marking the task failed")
	_ = runCmd.MarkFlagRequired("input")
}

func runRun(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file does not exist: %s", input)
	}

	output, _ := cmd.Flags().GetString("output")
	presetName, _ := cmd.Flags().GetString("preset")
	rawArgs, _ := cmd.Flags().GetString("args")
	workerOverride, _ := cmd.Flags().GetString("worker")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")

	var ffmpegArgs []string
	switch {
	case presetName != "":
		p, err := preset.Get(presetName)
		if err != nil {
			return err
		}
		ffmpegArgs = p.ToFFmpegArgs()
	case rawArgs != "":
		ffmpegArgs = strings.Fields(rawArgs)
	default:
		ffmpegArgs = []string{"-c:v", "libx265", "-crf", "28"}
	}

	if output == "" {
		output = scheduler.NextOutputPath(input, scheduler.DefaultSuffix)
	}

	ctx := context.Background()
	var workers []string
	if workerOverride != "" {
		workers = []string{workerOverride}
	} else {
		fmt.Println("Discovering Worker nodes...")
		workers = discoverWorkers(ctx, cfg.Discovery.Port, cfg.Worker.Port, logger)
	}
	if len(workers) == 0 {
		return fmt.Errorf("no Worker nodes available")
	}

	fmt.Printf("\nSubmitting transcode task:\n")
	fmt.Printf("  input:  %s\n", input)
	fmt.Printf("  output: %s\n", output)
	fmt.Printf("  worker: %s\n", workers[0])
	fmt.Printf("  args:   %s\n\n", strings.Join(ffmpegArgs, " "))

	tasks := scheduler.CreateTasksForFiles([]string{input}, ffmpegArgs, maxAttempts, scheduler.DefaultSuffix, 1)
	tasks[0].OutputFile = output

	var auditRecord func(models.Task)
	historyPath := historyDBPath(cmd)
	store, err := audit.Open(historyPath)
	if err != nil {
		logger.Warn("opening task history database", slog.String("error", err.Error()))
	} else {
		defer store.Close()
		auditRecord = store.RecordFunc(func(recErr error) {
			logger.Warn("recording task history", slog.String("error", recErr.Error()))
		})
	}

	s := scheduler.New(scheduler.DefaultClientFactory(cfg.Worker.Port), nil, auditRecord, logger)
	result, err := s.Run(ctx, tasks, workers)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("transcoding failed: %s", tasks[0].Error)
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}
