package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/stream"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collections over HTTP and WebSocket",
		Long: `Serve the pipeline's collections until interrupted.

Routes:
  GET  /healthz                 Health check
  GET  /collections             Collection list with sizes and sequences
  GET  /collections/{name}      Snapshot as JSON
  GET  /collections/{name}/ws   WebSocket event feed (?after=<seq> resumes)
  POST /ops                     Apply one operation or an array of them

Examples:
  livecoll serve
  livecoll serve -c deploy/livecoll.json --port=8080
  livecoll serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p, err := pipeline.Build(cfg, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			srv, err := stream.New(cfg, p, stream.WithLogger(logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			info(w, "serving %d collections on http://%s", len(p.Names()), cfg.Address())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from livecoll.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from livecoll.json)")

	return cmd
}
