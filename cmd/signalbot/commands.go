package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"signal_backend/internal/app/config"
	"signal_backend/internal/app/di"
	"signal_backend/internal/app/router"
	"signal_backend/internal/app/scheduler"
	analysishandler "signal_backend/internal/feature/analysis/transport/handler"
	tradeshandler "signal_backend/internal/feature/trades/transport/handler"
	jwtmw "signal_backend/internal/platform/jwt"
	"signal_backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

var envFile string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signalbot",
		Short: "Multi-timeframe pivot signal bot",
		Long: `signalbot evaluates crypto pairs against 4h/1h SMA trends and daily pivots,
sends STRONG BUY / STRONG SELL signals to Telegram and tracks each trade until
it hits a target or the stop.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to read before the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig は設定を読み込み、ロガーを初期化します。
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// withApp は SIGINT/SIGTERM でキャンセルされる ctx と組み立て済みの App で fn を実行し、
// 終了時に未保存のトレードを書き出します。
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *di.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Build(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("shutdown incomplete")
		}
	}()
	return fn(ctx, app)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the status HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *di.App) error {
				cfg := app.Config
				if cfg.JWTSecret == "" {
					log.Warn().Msg("JWT_SECRET is not set. Admin routes will answer 500.")
				}

				sched, err := scheduler.New(scheduler.Config{
					Location: cfg.Location,
					Analysis: cfg.AnalysisSchedule,
					Monitor:  cfg.MonitorSchedule,
					Report:   cfg.ReportSchedule,
					Symbols:  cfg.Cryptos,
				}, app.Signals, app.Monitor, app.Reports)
				if err != nil {
					return err
				}

				status := tradeshandler.NewStatusHandler(app.Stats, app.Ledger, app.Monitor, app.Reports)
				signals := analysishandler.NewSignalHandler(app.Signals, cfg.Cryptos)
				srv := &http.Server{
					Addr:              cfg.Addr(),
					Handler:           router.NewRouter(version, cfg.JWTSecret, status, signals),
					ReadHeaderTimeout: 10 * time.Second,
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					log.Info().Str("addr", srv.Addr).Str("version", version).Strs("assets", cfg.Cryptos).Msg("signalbot started")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("http server: %w", err)
					}
					return nil
				})

				sched.Start(gctx)
				if cfg.StartupAnalysis {
					g.Go(func() error {
						if err := sched.RunStartup(gctx); err != nil && gctx.Err() == nil {
							return err
						}
						return nil
					})
				}

				g.Go(func() error {
					<-gctx.Done()
					log.Info().Msg("shutting down")
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					err := srv.Shutdown(shutdownCtx)
					select {
					case <-sched.Stop().Done():
					case <-shutdownCtx.Done():
						log.Warn().Msg("scheduled jobs still running at shutdown")
					}
					return err
				})
				return g.Wait()
			})
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [symbols...]",
		Short: "Evaluate assets once (defaults to CRYPTOS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *di.App) error {
				symbols := app.Config.Cryptos
				if len(args) > 0 {
					symbols = args
				}
				sigs, err := app.Signals.AnalyzeAll(ctx, symbols)
				if err != nil {
					return err
				}
				return printJSON(cmd, sigs)
			})
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one monitor pass over ACTIVE trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *di.App) error {
				res, err := app.Monitor.CheckActive(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Send the 24h report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return withApp(cmd, func(ctx context.Context, app *di.App) error {
				now := time.Now().UTC()
				if dryRun {
					return printJSON(cmd, app.Reports.Summary(now, 24*time.Hour))
				}
				s, err := app.Reports.Report(ctx, now)
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "Print the summary without a monitor pass or a message")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin JWT signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}
			token, err := jwtmw.NewGenerator(cfg.JWTSecret, ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "operator", "Token subject")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "signalbot version %s\n", version)
		},
	}
}
