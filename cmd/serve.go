package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser dashboard",
	Example: `  csvdash serve
  csvdash serve --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		// Refuse to start without a key so the UI never comes up half-configured.
		if err := c.RequireAPIKey(); err != nil {
			return err
		}
		addr := c.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		sessions := dashboard.NewSessions(time.Duration(c.SessionTTLMin) * time.Minute)
		srv, err := dashboard.NewServer(newAdvisor(c), sessions, dashboard.ServerOptions{
			PreviewRows:    c.PreviewRows,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		})
		if err != nil {
			return fmt.Errorf("init dashboard: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hs := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = hs.Shutdown(shutdownCtx)
		}()

		log.Printf("listening on %s", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
