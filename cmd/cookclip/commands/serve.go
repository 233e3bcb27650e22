package commands

import (
	"cookclip/lib/telemetry"
	"cookclip/lib/util/serviceutil"
	"cookclip/services/cookclip"
	"log/slog"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().IntP("port", "p", 0, "The port to listen on, overrides server.port.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves the catalog and bookmarks as a JSON api for web frontends.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()

		port := a.config.Server.Port
		if *servePort > 0 {
			port = *servePort
		}

		telemetry.InstrumentPerfStats(ctx)

		// warm the detail cache so the first lookup is fast
		go func() {
			_, err := a.cache.Full(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to warm catalog cache", "err", err)
			}
		}()

		handler := cookclip.NewHandler(a.service, cookclip.HandlerOptions{
			AllowedOrigins: a.config.Server.AllowedOrigins,
			AccessToken:    a.config.Server.AccessToken,
		})
		err := serviceutil.StartHttpServer(ctx, port, handler)
		if err != nil {
			a.fatal("http server failed", err)
		}
	},
}
