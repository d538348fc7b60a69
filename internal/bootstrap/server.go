package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/farefinder/api"
	"github.com/Domenick1991/farefinder/config"
	"github.com/Domenick1991/farefinder/internal/service/search"
	"github.com/Domenick1991/farefinder/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, searchSvc search.SearchUseCase, metrics http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewHandler(cfg, searchSvc, metrics, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen http %s: %w", cfg.HTTP.Address, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewHandler builds the gin engine with every route and middleware, wrapped
// in otelhttp server instrumentation.
func NewHandler(cfg *config.Config, searchSvc search.SearchUseCase, metrics http.Handler, logger *slog.Logger) http.Handler {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestID(), telemetry.HTTPRoute(), api.AccessLog(logger))
	engine.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))

	creds := api.Credentials{
		HasAPIKey:    cfg.Amadeus.ClientID != "",
		HasAPISecret: cfg.Amadeus.ClientSecret != "",
	}

	root := engine.Group("/")
	api.NewHealthHandler(creds).Register(root)
	api.NewSearchHandler(searchSvc, creds, logger).Register(root)
	if cfg.HTTP.Swagger {
		api.NewDocsHandler().Register(root)
	}
	if metrics != nil {
		root.GET("/metrics", gin.WrapH(metrics))
	}

	return otelhttp.NewHandler(engine, "farefinder",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", api.RequestIDHeader},
		ExposeHeaders: []string{api.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
