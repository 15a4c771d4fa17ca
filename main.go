package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "capacity",
		Short:         "estimate the storage capacity of a perceptron by simulation",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				return fmt.Errorf("log level %q: %w", logLevel, err)
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: time.Kitchen,
				}),
			))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(runCmd(), defaultCmd())
	return root
}

func runCmd() *cobra.Command {
	var (
		configDir   string
		dbPath      string
		plotDir     string
		notifyToken string
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run every settings file in a directory, or the reference sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &Runner{
				PlotDir:  plotDir,
				Out:      cmd.OutOrStdout(),
				Logger:   slog.Default(),
				Progress: !noProgress,
			}

			if dbPath != "" {
				store, err := OpenStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				runner.Store = store
				slog.Info("database initialized successfully", "path", dbPath)
			}

			if notifyToken != "" {
				notifier, err := NewPushbulletNotifier(notifyToken)
				if err != nil {
					slog.Warn("pushbullet disabled", "err", err)
				} else {
					runner.Notifier = notifier
				}
			}

			if configDir == "" {
				cfg, err := SettingsFactory(DefaultSettings())
				if err != nil {
					return err
				}
				_, err = runner.RunSweep(cmd.Context(), DefaultSettings().Name, cfg)
				return err
			}

			failed, err := SimulateMultipleFiles(cmd.Context(), configDir, runner)
			if err != nil {
				return fmt.Errorf("%d settings files failed, last: %w", failed, err)
			}
			slog.Info("all configs finished for all files")
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory of JSON settings files")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database receiving the results")
	cmd.Flags().StringVar(&plotDir, "plot-dir", "", "directory receiving one PNG capacity curve per sweep")
	cmd.Flags().StringVar(&notifyToken, "notify-token", os.Getenv("PUSHBULLET_TOKEN"), "pushbullet access token")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func defaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "print the reference settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "\t")
			return enc.Encode(DefaultSettings())
		},
	}
}
