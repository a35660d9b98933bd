package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/parcelbooking/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 5 * time.Second

// Run serves router on cfg.HTTP.Address and blocks until ctx is cancelled or
// the server fails. Cancellation triggers a graceful shutdown.
func Run(ctx context.Context, cfg *config.Config, router *gin.Engine, log logrus.FieldLogger) error {
	srv := newServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", cfg.HTTP.Address).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, router *gin.Engine) *http.Server {
	MountDocs(router, cfg.HTTP.SwaggerDir)
	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// MountDocs serves the OpenAPI document from dir under /swagger and the
// swagger UI under /docs. An empty dir mounts nothing.
func MountDocs(router *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	router.Static("/swagger", dir)
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.json"))
	router.GET("/docs/*any", gin.WrapH(ui))
}
