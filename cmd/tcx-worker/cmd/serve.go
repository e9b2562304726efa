package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ybyllc/transcoder-cluster/internal/discovery"
	"github.com/ybyllc/transcoder-cluster/internal/ffmpeg"
	"github.com/ybyllc/transcoder-cluster/internal/models"
	"github.com/ybyllc/transcoder-cluster/internal/version"
	"github.com/ybyllc/transcoder-cluster/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the worker daemon",
	Long: `Start tcx-worker: verify ffmpeg is usable, open the work directory, start
the HTTP task endpoint, and (unless --no-discovery) begin answering UDP
discovery broadcasts and heartbeating status.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "HTTP listen port (0 = use config/default 9000)")
	serveCmd.Flags().String("work-dir", "", "directory for uploaded and transcoded files")
	serveCmd.Flags().String("ffmpeg-path", "", "ffmpeg binary path")
	serveCmd.Flags().Bool("no-discovery", false, "disable UDP discovery responder and heartbeater")
	serveCmd.Flags().Int("discovery-port", 0, "UDP discovery port (0 = use config/default 55557)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	info := version.GetInfo()
	logger.Info("tcx-worker starting",
		slog.String("version", info.Version),
		slog.String("commit", info.Commit),
		slog.String("go", info.GoVersion),
		slog.String("platform", info.Platform),
	)

	v := GetWorkerViper()
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadWorkerConfig(v, configPath)
	if err != nil {
		return err
	}

	port := cfg.Worker.Port
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		port = p
	}
	workDir := cfg.Worker.WorkDir
	if d, _ := cmd.Flags().GetString("work-dir"); d != "" {
		workDir = d
	}
	ffmpegPath := cfg.Worker.FFmpegPath
	if p, _ := cmd.Flags().GetString("ffmpeg-path"); p != "" {
		ffmpegPath = p
	}
	noDiscovery := cfg.Worker.NoDiscovery
	if nd, _ := cmd.Flags().GetBool("no-discovery"); nd {
		noDiscovery = true
	}
	discoveryPort := cfg.Discovery.Port
	if dp, _ := cmd.Flags().GetInt("discovery-port"); dp > 0 {
		discoveryPort = dp
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return &models.ConfigurationError{Message: fmt.Sprintf("creating work dir %q", workDir), Err: err}
	}

	detector := ffmpeg.NewDetector(ffmpegPath, cfg.Worker.FFprobePath, 5*time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifyCtx, verifyCancel := context.WithTimeout(ctx, 10*time.Second)
	err = detector.Verify(verifyCtx)
	verifyCancel()
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	slot := worker.NewSlot(hostname)

	serverCfg := worker.DefaultServerConfig()
	serverCfg.Port = port
	server := worker.NewServer(serverCfg, slot, detector, workDir, discoveryEffectivePort(noDiscovery, discoveryPort), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)

	if !noDiscovery {
		statusFn := worker.StatusFunc(slot)
		responder := discovery.NewResponder(discoveryPort, statusFn, logger)
		heartbeater := discovery.NewHeartbeater(discoveryPort, cfg.Discovery.HeartbeatInterval, statusFn, logger)
		g.Go(func() error { return responder.Run(gctx) })
		g.Go(func() error { return heartbeater.Run(gctx) })
	}

	logger.Info("worker ready",
		slog.Int("port", port),
		slog.String("work_dir", workDir),
		slog.Bool("discovery", !noDiscovery),
	)

	sig := waitForSignal()
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	_ = g.Wait()
	logger.Info("shutdown complete")
	return nil
}

// discoveryEffectivePort returns 0 (disabling the worker's task_complete
// broadcast) when discovery is turned off entirely.
func discoveryEffectivePort(noDiscovery bool, port int) int {
	if noDiscovery {
		return 0
	}
	return port
}

func waitForSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return <-sigCh
}
