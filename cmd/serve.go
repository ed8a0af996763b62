// =============================================================================
// TORG12 Parser - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes recognition over HTTP.
//
// COMMAND USAGE:
//   torg12 serve [--addr :8083]
//
// ENDPOINTS:
//   POST /api/v1/torg12/parse   multipart field "file"; ?format=json|xml|xlsx
//   GET  /health
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/api"
)

// serveAddr overrides server.addr from the configuration.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP upload endpoint",
	Long: `The serve command starts an HTTP server that recognizes uploaded
workbooks. It stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}

func runServe() error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	if env.cfg.LogLevel != "debug" && !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := env.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(env.cfg, env.profiles, env.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		env.logger.Info("torg12 service listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	env.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
