package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"farcaster-analyzer/config"
	"farcaster-analyzer/metrics"
	"farcaster-analyzer/models"
	"farcaster-analyzer/services"
	"farcaster-analyzer/source/neynar"
	"farcaster-analyzer/storage"
	"farcaster-analyzer/utils"
)

const metricsJob = "farcaster_analyzer"

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "farcaster-analyzer",
	Short: "Farcaster ecosystem analyzer",
	Long: `Samples trending casts, keyword searches and user profiles from the Neynar API
and prints an ecosystem report: platform overview, trending themes, user
leaderboard, content patterns, token/NFT discussion and network health.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("hours", 24, "hours of activity to analyze")
	flags.String("output-json", "", "write the full report as JSON to this path")
	flags.String("output-report", "", "write the text report to this path")
	flags.String("output-csv", "", "write a CSV sample of trending casts to this path")
	flags.Bool("cast-to-farcaster", false, "publish a summary cast (needs NEYNAR_SIGNER_UUID)")
	flags.Bool("parallel", false, "run the analysis sections concurrently")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"hours":             "hours",
		"output_json":       "output-json",
		"output_report":     "output-report",
		"output_csv":        "output-csv",
		"cast_to_farcaster": "cast-to-farcaster",
		"parallel":          "parallel",
		"log_level":         "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load(v)
	logger := utils.NewLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("[main] %v", err)
		return err
	}

	logger.Info("=== Farcaster Ecosystem Analyzer v%s starting ===", services.Version)
	logger.Info("[main] Config: hours %d | window %s | parallel %t | concurrency %d | delay %dms",
		cfg.HoursBack, cfg.TimeWindow(), cfg.Parallel, cfg.MaxConcurrency, cfg.SearchDelayMs)

	collector := metrics.NewCollector()
	client := neynar.New(cfg, logger, neynar.WithRecorder(collector))
	analyzer := services.NewAnalyzer(client, cfg, logger, services.WithObserver(collector))

	report := analyzer.Analyze(ctx, cfg.HoursBack)
	text := services.Render(report)
	if err := services.Print(os.Stdout, text); err != nil {
		logger.Error("[main] Printing report failed: %v", err)
	}

	writeArtifacts(cfg, logger, analyzer.TrendingSample(), report)

	if cfg.CastToFarcaster {
		result := services.PublishSummary(ctx, client, cfg.NeynarSignerUUID, report, cfg.PublishMaxChars)
		if result.Success {
			logger.Info("[main] Published summary cast %s", result.CastHash)
		} else {
			logger.Error("[main] Publishing summary failed: %s", result.Error)
		}
	}

	if cfg.PushgatewayURL != "" {
		if err := collector.Push(cfg.PushgatewayURL, metricsJob, report.Metadata.RunID); err != nil {
			logger.Warn("[main] %v", err)
		} else {
			logger.Debug("[main] Metrics pushed to %s", cfg.PushgatewayURL)
		}
	}

	requests, failures := client.Stats()
	logger.Info("[main] Done. %d upstream requests, %d failed", requests, failures)
	return nil
}

// writeArtifacts saves whichever output files were requested. A failed
// write is logged; the run still succeeds.
func writeArtifacts(cfg *config.Config, logger *utils.Logger, sample []models.Cast, report *models.AggregateReport) {
	type output struct {
		path string
		w    storage.ReportWriter
	}
	var writers []output
	if cfg.OutputJSONPath != "" {
		writers = append(writers, output{cfg.OutputJSONPath, storage.NewJSONWriter(cfg.OutputJSONPath)})
	}
	if cfg.OutputReportPath != "" {
		writers = append(writers, output{cfg.OutputReportPath, storage.NewTextWriter(cfg.OutputReportPath, services.Render)})
	}
	for _, out := range writers {
		if err := out.w.WriteReport(report); err != nil {
			logger.Error("[main] %v", err)
			continue
		}
		logger.Info("[main] Report saved to %s", out.path)
	}

	if cfg.OutputCSVPath == "" {
		return
	}
	w, err := storage.NewCSVWriter(cfg.OutputCSVPath, cfg.CSVSampleSize)
	if err != nil {
		logger.Error("[main] %v", err)
		return
	}
	if err := writeSample(w, sample); err != nil {
		logger.Error("[main] %v", err)
		return
	}
	logger.Info("[main] Trending sample saved to %s (%d casts analyzed)", cfg.OutputCSVPath, len(sample))
}

// writeSample writes the trending casts the report analyzed and closes w.
func writeSample(w storage.SampleWriter, sample []models.Cast) error {
	if err := w.WriteSample(sample); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
