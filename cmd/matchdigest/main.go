// Command matchdigest ingests the daily match analyses, keeps their scores
// fresh and posts the day's picks to the channel.
//
// Usage:
//
//	matchdigest ingest --date 2024-05-01 --notify
//	matchdigest reconcile
//	matchdigest publish prediction --index 2
//	matchdigest report --from 2024-05-01 --to 2024-05-07 --out week.csv
//	matchdigest schedule
//	matchdigest migrate
//	matchdigest migrate version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/match-digest/internal/app"
	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/observability"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "matchdigest",
		Short:         "Match analysis ingestion and publishing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(ingestCmd(), reconcileCmd(), publishCmd(), reportCmd(), scheduleCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		logging.Default().Error("command failed", "command", commandName(os.Args), "error", err)
		_ = logging.Default().Sync()
		os.Exit(1)
	}
	_ = logging.Default().Sync()
}

func commandName(args []string) string {
	if len(args) < 2 {
		return ""
	}
	return args[1]
}

func ingestCmd() *cobra.Command {
	var (
		date   string
		notify bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch and store the analyses of one day's matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), "ingest", func(ctx context.Context, a *app.App) error {
				summary, err := a.RunIngestion(ctx, strings.TrimSpace(date), notify)
				a.Logger().InfoContext(ctx, "ingestion summary",
					"date", summary.Date,
					"status", summary.Status,
					"total", summary.Total,
					"success", summary.Success,
					"failed", summary.Failed,
					"skipped", summary.Skipped,
				)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "match date YYYY-MM-DD or DD-MM-YYYY (default today)")
	cmd.Flags().BoolVar(&notify, "notify", false, "post the run summary to the channel")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Refresh placeholder scores of matches past the grace period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), "reconcile", func(ctx context.Context, a *app.App) error {
				summary, err := a.RunReconcile(ctx, notify)
				a.Logger().InfoContext(ctx, "reconcile summary",
					"total", summary.Total,
					"updated", summary.Updated,
					"unchanged", summary.Unchanged,
					"failed", summary.Failed,
				)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "post the run summary to the channel")
	return cmd
}

func publishCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:       "publish <job>",
		Short:     "Post one publish job: " + strings.Join(app.PublishJobs, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: app.PublishJobs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := strings.TrimSpace(args[0])
			if !app.IsPublishJob(job) {
				return fmt.Errorf("unknown publish job %q, valid jobs are %s", job, strings.Join(app.PublishJobs, ", "))
			}
			return run(cmd.Context(), "publish "+job, func(ctx context.Context, a *app.App) error {
				return a.RunPublish(ctx, job, index)
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "prediction slot, used by the prediction job")
	return cmd
}

func reportCmd() *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export settled results with their predictions as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), "report", func(ctx context.Context, a *app.App) error {
				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create report file: %w", err)
					}
					defer f.Close()
					w = f
				}
				count, err := a.ExportReport(ctx, from, to, w)
				if err != nil {
					return err
				}
				a.Logger().InfoContext(ctx, "report written", "rows", count, "from", from, "to", to, "out", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first match date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last match date YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily pipeline on its schedules until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), "", func(ctx context.Context, a *app.App) error {
				logger := a.Logger()
				pprofSrv, err := observability.StartPprofServer(a.Config(), logger)
				if err != nil {
					return fmt.Errorf("start pprof: %w", err)
				}
				defer func() {
					if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
						logger.Error("stop pprof", "error", err)
					}
				}()

				s, err := a.NewScheduler()
				if err != nil {
					return err
				}
				s.Start()
				<-ctx.Done()

				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return s.Stop(stopCtx)
			})
		},
	}
}

func load() (config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// run builds the app, runs fn until it returns or a signal arrives, and
// reports a failure of job to the channel when job is not empty.
func run(parent context.Context, job string, fn func(ctx context.Context, a *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := load()
	if err != nil {
		return err
	}

	command := job
	if command == "" {
		command = "schedule"
	}
	shutdownObservability, err := observability.Start(cfg, logger, command)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownObservability(flushCtx); err != nil {
			logger.Warn("stop observability", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = logging.ContextWith(ctx, "command", command)
	ctx, span := otel.Tracer("match-digest/cmd/matchdigest").Start(ctx, "matchdigest "+command)
	defer span.End()

	runErr := fn(ctx, a)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		if job != "" && ctx.Err() == nil {
			a.NotifyFailure(ctx, job, runErr)
		}
	}
	return runErr
}
