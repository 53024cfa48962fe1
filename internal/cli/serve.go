package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ssuula/internal/api"
	"github.com/ppiankov/ssuula/internal/logging"
)

var warmup bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve verse lookups over HTTP",
	Long: `Serve starts the HTTP API. The translation is loaded on the first lookup
(or at startup with --warmup) and kept for the generation; POST /v1/reload
moves to a new generation and refetches.

Endpoints:
  GET  /healthz
  GET  /v1/chapters
  GET  /v1/chapters/{chapter}
  GET  /v1/chapters/{chapter}/verses/{verse}
  GET  /v1/verses/{ref}
  GET  /v1/report
  POST /v1/reload`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&warmup, "warmup", false, "load the translation before accepting requests")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, err := newService()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if warmup {
		fmt.Fprintf(os.Stderr, "⚙️  Loading %s...\n", cfg.Source.URL)
		if _, err := svc.Translation(ctx); err != nil {
			// Lookups report the failure until the next reload
			logging.Error("warmup failed", "error", err)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Listening on %s\n", cfg.Server.Addr)
	return api.NewServer(svc, Version).ListenAndServe(ctx, cfg.Server.Addr)
}
