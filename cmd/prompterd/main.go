// Command prompterd serves the prompt analysis engine over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	prompter "github.com/aegntic/prompt-prompter-dd"
	"github.com/aegntic/prompt-prompter-dd/config"
	"github.com/aegntic/prompt-prompter-dd/server"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

func main() {
	root := &cobra.Command{
		Use:           "prompterd",
		Short:         "Prompt analysis and optimization service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "interface to bind")
	cmd.Flags().IntVar(&port, "port", 7860, "port to listen on")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.LogLevel)

	var sink telemetry.Sink = telemetry.NopSink{}
	statsdSink, err := telemetry.NewStatsdSink(cfg.StatsdAddr, logger)
	if err != nil {
		logger.Warn("statsd unavailable, telemetry disabled", "addr", cfg.StatsdAddr, "error", err)
	} else {
		sink = statsdSink
		defer statsdSink.Close()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := prompter.New(ctx, cfg, prompter.WithLogger(logger), prompter.WithSink(sink))
	if err != nil {
		return fmt.Errorf("engine startup failed: %w", err)
	}
	defer eng.Close()

	tags := telemetry.BaseTags(cfg.DDService, cfg.DDEnv)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	logger.Info("starting server", "addr", addr, "model", cfg.GeminiModel)
	sink.Event("Service Started", fmt.Sprintf("prompterd listening on %s", addr), telemetry.AlertInfo, tags)

	err = server.New(eng, sink, logger).ListenAndServe(ctx, addr)

	sink.Event("Service Stopped", "prompterd shut down", telemetry.AlertInfo, tags)
	logger.Info("server stopped")
	return err
}
