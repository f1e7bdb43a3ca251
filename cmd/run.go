// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/carrier"
	"github.com/avikamboj/ordersync-cli/internal/config"
	"github.com/avikamboj/ordersync-cli/internal/observability"
	"github.com/avikamboj/ordersync-cli/internal/orders"
	"github.com/avikamboj/ordersync-cli/internal/panel"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Logs into the panel and syncs the listed orders with their carriers",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment.
			if err := viper.BindPFlag("batch.process_count", cmd.Flags().Lookup("count")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.include_orders", cmd.Flags().Lookup("include")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.exclude_orders", cmd.Flags().Lookup("exclude")); err != nil {
				return err
			}
			if err := viper.BindPFlag("carriers.override", cmd.Flags().Lookup("carrier")); err != nil {
				return err
			}
			return viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// A Ctrl-C during a long batch should stop between rows, not
			// mid-keystroke in the browser.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			summary, err := executeRun(ctx, &cfg, logger)
			if summary != nil {
				// The summary is the run's audit trail; print and persist it
				// even when the batch ended early.
				fmt.Println(summary.Render())
				if path, werr := summary.Write(cfg.Output.Dir); werr != nil {
					logger.Error("Failed to persist run summary", zap.Error(werr))
				} else {
					logger.Info("Run summary written", zap.String("path", path))
				}
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Run aborted by user signal")
					return fmt.Errorf("run aborted by user signal")
				}
				return err
			}
			return nil
		},
	}

	runCmd.Flags().IntP("count", "n", 0, "Maximum number of orders to process. 0 means all. (Overrides config/env)")
	runCmd.Flags().StringSlice("include", nil, "Order ids to process; all others are skipped. (Overrides config/env)")
	runCmd.Flags().StringSlice("exclude", nil, "Order ids to skip. (Overrides config/env)")
	runCmd.Flags().String("carrier", "", "Force every order onto this carrier (dtdc or delhivery). (Overrides config/env)")
	runCmd.Flags().StringP("output", "o", "", "Directory for the run summary. (Overrides config/env)")

	return runCmd
}

// executeRun wires the components and drives the batch end to end.
func executeRun(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*orders.Summary, error) {
	mgr, err := browser.NewManager(ctx, cfg.Browser, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if cerr := mgr.Close(); cerr != nil {
			logger.Warn("Error during browser shutdown", zap.Error(cerr))
		}
	}()

	page := mgr.FirstPage()
	client := panel.NewClient(cfg.Panel, page, logger)
	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	if err := client.OpenOrderList(ctx); err != nil {
		return nil, err
	}

	store := carrier.NewLookupStore(cfg.Carriers, nil, nil, logger)
	store.EnsureLoaded()
	resolver := carrier.NewResolver(store, cfg.Carriers.Override, logger)

	popups := orders.NewPopupHandler(page, cfg.Batch, logger)
	flow := orders.NewSyncWorkflow(mgr, client.OrderURL, resolver, cfg.Sync, logger)
	runner := orders.NewRunner(page, popups, flow, resolver, cfg.Batch, logger, nil)

	return runner.Run(ctx)
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
