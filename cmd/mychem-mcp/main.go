package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chembridge/mychem-mcp/config"
	"github.com/chembridge/mychem-mcp/server"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mychem-mcp",
		Short:         "MCP server exposing the MyChem.info chemical annotation API",
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newToolsCmd())
	return root
}

// initLogs routes logs to stderr. Stdout carries the MCP protocol and must
// stay clean.
func initLogs(level string) error {
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	l, err := xlog.ParseLevel(level)
	if err != nil {
		return err
	}
	xlog.SetGlobalLogLevel(l)
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if err := initLogs(cfg.LogLevel); err != nil {
				return err
			}
			return server.Serve(ctx, cfg)
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if err := initLogs(cfg.LogLevel); err != nil {
				return err
			}
			list, err := server.Tools(server.NewClient(cfg))
			if err != nil {
				return err
			}
			catalog := make([]tools.ITool, len(list))
			for i, t := range list {
				catalog[i] = t
			}
			fmt.Fprintln(cmd.OutOrStdout(), tools.Descriptions(catalog...))
			return nil
		},
	}
}
