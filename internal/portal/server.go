// Package portal serves the builder-facing JSON API and the daily digest.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/systemhause/hause/internal/notify"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the portal server.
type StartOpts struct {
	DB         *gorm.DB
	Port       int
	DigestCron string // cron expression for the daily digest; empty disables it
	Notifiers  []notify.Notifier
	Out        io.Writer
}

// Start launches the portal HTTP server and the digest cron. It blocks until
// ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("portal: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.DB, opts.Notifiers)

	if opts.DigestCron != "" && len(opts.Notifiers) > 0 {
		c := cron.New()
		if _, err := c.AddFunc(opts.DigestCron, func() {
			SendDigest(ctx, opts.DB, opts.Notifiers)
		}); err != nil {
			return fmt.Errorf("portal: digest cron %q: %w", opts.DigestCron, err)
		}
		c.Start()
		defer c.Stop()
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Portal running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("portal: %w", err)
	}
	return nil
}
