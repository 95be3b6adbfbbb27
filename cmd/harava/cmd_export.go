package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/harava/config"
	"github.com/yairfalse/harava/export"
	"github.com/yairfalse/harava/internal/emitter"
	"github.com/yairfalse/harava/kinds"
	"github.com/yairfalse/harava/policy"
	"github.com/yairfalse/harava/regions"
	"github.com/yairfalse/harava/retry"
	"github.com/yairfalse/harava/session"
	"github.com/yairfalse/harava/telemetry"
)

var (
	exportConfig    string
	exportKinds     []string
	exportOutput    string
	exportPolicy    string
	exportBatchSize int
	exportServe     bool
	exportDebug     bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cloud resources as JSON documents",
	Long: `Export every selected resource kind from every healthy account and
allowed region as normalized JSON documents.

Each document carries the resource type, its properties keyed the way
the AWS API names them, and the account and region it came from:

  {"Type": "AWS::EC2::Instance", "Properties": {...},
   "__AccountId": "111111111111", "__Region": "us-east-1"}

Per-resource enrichment failures drop the optional property, not the
document. Per-kind and per-account failures are reported at the end
and the run keeps going.`,
	Example: `  harava export                                   # Everything in the config
  harava export --kinds AWS::EC2::Instance        # One kind only
  harava export --output ./resources.ndjson       # Write to a file
  harava export --policy export.rego              # Gate documents through OPA
  harava export --serve                           # Keep /metrics up afterwards`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportConfig, "config", "c", "harava.yaml", "Config file path")
	exportCmd.Flags().StringSliceVar(&exportKinds, "kinds", nil, "Type names to export (default: config, then all)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path override (\"-\" = stdout)")
	exportCmd.Flags().StringVar(&exportPolicy, "policy", "", "Rego export filter override")
	exportCmd.Flags().IntVar(&exportBatchSize, "batch-size", 0, "Documents per batch override")
	exportCmd.Flags().BoolVar(&exportServe, "serve", false, "Keep the metrics server running after the export")
	exportCmd.Flags().BoolVar(&exportDebug, "debug", false, "Enable debug logging")
}

func runExport(cmd *cobra.Command, args []string) error {
	setupLogging(exportDebug)

	cfg, err := config.LoadConfig(exportConfig)
	if err != nil {
		return err
	}
	applyExportFlags(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTELEndpoint:   cfg.Telemetry.OTELEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = otelShutdown(shutdownCtx)
	}()

	strategy, err := buildStrategy(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build session strategy: %w", err)
	}

	em, err := buildEmitter(cfg.Output)
	if err != nil {
		return err
	}
	defer func() { _ = em.Close() }()

	catalog := kinds.DefaultRegistry(cfg.Export.CloudControlTypes...)

	eng := export.New(strategy, catalog, em).
		WithRegionPolicy(regions.Policy{Allow: cfg.Regions.Allow, Deny: cfg.Regions.Deny}).
		WithBatchSize(cfg.Export.BatchSize).
		WithRetry(retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
			Retryable:   retry.Throttling,
		})

	if cfg.PolicyFile != "" {
		filter := policy.NewFilter()
		if err := filter.LoadFile(ctx, cfg.PolicyFile); err != nil {
			return fmt.Errorf("load export policy: %w", err)
		}
		eng.WithFilter(filter)
	}

	var g run.Group
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	srv := &http.Server{
		Addr:              cfg.Telemetry.MetricsAddr,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Add(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	})

	var report *export.Report
	g.Add(func() error {
		markReady()
		r, err := eng.Run(ctx, export.Request{
			Kinds:   cfg.Export.Kinds,
			Include: cfg.Export.Include,
		})
		report = r
		if err != nil {
			return err
		}
		if exportServe {
			<-ctx.Done()
		}
		return nil
	}, func(error) {
		cancel()
	})

	runErr := g.Run()

	if report != nil {
		displayReport(report)
	}

	var sig run.SignalError
	if errors.As(runErr, &sig) {
		fmt.Fprintf(os.Stderr, "\n📋 Received %s, shutting down\n", sig.Signal)
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	if report != nil && !report.Success {
		return fmt.Errorf("export completed with %d failures", len(report.Failures))
	}
	return nil
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func applyExportFlags(cfg *config.Config) {
	if len(exportKinds) > 0 {
		cfg.Export.Kinds = exportKinds
	}
	if exportOutput != "" {
		cfg.Output.Path = exportOutput
	}
	if exportPolicy != "" {
		cfg.PolicyFile = exportPolicy
	}
	if exportBatchSize > 0 {
		cfg.Export.BatchSize = exportBatchSize
	}
}

// buildStrategy maps the account config onto a session strategy. Single
// mode with a role ARN assumes that one role on top of the base chain.
func buildStrategy(ctx context.Context, cfg *config.Config) (session.Strategy, error) {
	switch cfg.Account.Mode {
	case config.ModeSingle:
		var roleARN string
		if len(cfg.Account.RoleARNs) > 0 {
			roleARN = cfg.Account.RoleARNs[0]
		}
		return session.NewSingle(ctx, session.SingleOptions{
			Region:          cfg.Account.Region,
			AccessKeyID:     cfg.Account.AccessKeyID,
			SecretAccessKey: cfg.Account.SecretAccessKey,
			SessionToken:    cfg.Account.SessionToken,
			RoleARN:         roleARN,
			ExternalID:      cfg.Account.ExternalID,
			SessionName:     cfg.Account.SessionName,
		})
	case config.ModeRoles:
		return session.NewMulti(ctx, session.MultiOptions{
			Region:      cfg.Account.Region,
			RoleARNs:    cfg.Account.RoleARNs,
			ExternalID:  cfg.Account.ExternalID,
			SessionName: cfg.Account.SessionName,
			ProbeBatch:  cfg.Account.ProbeBatch,
		})
	case config.ModeWebIdentity:
		awsCfg, err := session.NewWebIdentityConfig(ctx,
			cfg.Account.WebIdentity.RoleARN,
			cfg.Account.WebIdentity.TokenFile,
			cfg.Account.SessionName,
			cfg.Account.Region,
		)
		if err != nil {
			return nil, err
		}
		return session.NewSingleFromConfig(awsCfg), nil
	default:
		return nil, fmt.Errorf("unknown account mode %q", cfg.Account.Mode)
	}
}

// buildEmitter wires the configured sink plus the metrics emitter. The
// sink comes first so metrics only count accepted batches.
func buildEmitter(cfg config.OutputConfig) (emitter.Emitter, error) {
	var sink emitter.Emitter
	switch cfg.Format {
	case "dir":
		d, err := emitter.NewDirEmitter(cfg.Path)
		if err != nil {
			return nil, err
		}
		sink = d
	default:
		if cfg.Path == "-" || cfg.Path == "" {
			sink = emitter.NewNDJSONEmitter(os.Stdout)
		} else {
			f, err := emitter.NewFileEmitter(cfg.Path)
			if err != nil {
				return nil, err
			}
			sink = f
		}
	}

	metrics, err := emitter.NewMetricsEmitter()
	if err != nil {
		return nil, err
	}
	return emitter.NewMultiEmitter(sink, metrics), nil
}

var ready atomic.Bool

func markReady() {
	ready.Store(true)
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/readyz", handleReadyz)
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReadyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// displayReport writes the summary to stderr; stdout belongs to the
// document stream.
func displayReport(report *export.Report) {
	w := os.Stderr
	fmt.Fprintln(w, "\n✅ Export Complete")
	fmt.Fprintf(w, "  🏦 Accounts: %d\n", report.Accounts)
	fmt.Fprintf(w, "  🌍 Regions: %d\n", report.Regions)
	fmt.Fprintf(w, "  📄 Documents: %d\n", report.Documents)
	fmt.Fprintf(w, "  📦 Batches: %d\n", report.Batches)
	if report.Denied > 0 {
		fmt.Fprintf(w, "  🚫 Denied by policy: %d\n", report.Denied)
	}
	fmt.Fprintf(w, "  ⏱️  Duration: %s\n", report.Duration)

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\n⚠️  Failures:\n")
		for _, f := range report.Failures {
			if f.Kind == "" {
				fmt.Fprintf(w, "  - account %s: %s\n", f.AccountID, f.Error)
				continue
			}
			fmt.Fprintf(w, "  - %s in %s/%s: %s\n", f.Kind, f.AccountID, f.Region, f.Error)
		}
	}
}
