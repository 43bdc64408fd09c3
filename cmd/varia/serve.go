package main

import (
	"github.com/aretw0/varia"
	"github.com/aretw0/varia/internal/cli"
	"github.com/aretw0/varia/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the session-scoped HTTP API. Each session owns an isolated engine; side-effects are
streamed to clients over Server-Sent Events and, with --redis, published on Redis Pub/Sub.
Prometheus metrics are exposed at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		out := cmd.OutOrStdout()
		if !noBanner {
			tui.PrintBanner(out, termenv.EnvColorProfile(), varia.Version)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.Serve(sigCtx, out, cli.ServeOptions{
			Port:      port,
			RedisAddr: redisAddr,
			Logger:    logger,
		})
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("shutdown requested", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for publishing actions (e.g. localhost:6379)")
	serveCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
}
