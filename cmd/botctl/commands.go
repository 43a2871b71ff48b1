package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liveplace/botctl/internal/lifecycle"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "botctl",
		Short: "Lifecycle CLI for the LivePlace Telegram bot deployment",
		Long: `botctl starts, updates, and health-checks the containerized
LivePlace Telegram bot by sequencing docker compose and docker commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")

	// run wires logging, config, and the controller, then invokes op.
	run := func(op func(ctx context.Context, c *lifecycle.Controller) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cleanup, err := initLogging()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			c, err := buildController(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return op(ctx, c)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the bot service",
		Long: `Start the bot service in the background. Fails without touching the
runtime when the service is already running or the env file is missing.`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			return c.Start(ctx)
		}),
	})

	var checkOnly bool
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update the bot to the latest image and restart it",
		Long: `Run the update pipeline: down, pull, rebuild without cache, up.
The pipeline halts on the first failing step and reports which step failed.`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			if checkOnly {
				return c.CheckUpdate(ctx)
			}
			return c.Update(ctx)
		}),
	}
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check whether a newer image exists; apply nothing")
	root.AddCommand(updateCmd)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the bot is running, its health, and recent logs",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			return c.Status(ctx)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the bot service",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			return c.Stop(ctx)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "restart",
		Short: "Restart the bot service",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			return c.Restart(ctx)
		}),
	})

	var tail int
	var follow bool
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent bot logs",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *lifecycle.Controller) error {
			return c.Logs(ctx, tail, follow)
		}),
	}
	logsCmd.Flags().IntVarP(&tail, "tail", "n", 0, "Number of log lines to show (default: configured log_tail)")
	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines until interrupted")
	root.AddCommand(logsCmd)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "botctl %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	})

	return root
}
