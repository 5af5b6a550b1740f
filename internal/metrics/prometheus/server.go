package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusServerConfig struct {
	Port     int
	Gatherer prometheus.Gatherer
}

type PrometheusServer struct {
	config *PrometheusServerConfig
	logger *zap.Logger
}

func NewPrometheusServer(cfg *PrometheusServerConfig, l *zap.Logger) *PrometheusServer {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &PrometheusServer{
		config: cfg,
		logger: l,
	}
}

func (ps *PrometheusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(ps.config.Gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves /metrics until ctx is cancelled.
func (ps *PrometheusServer) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", ps.config.Port),
		Handler: ps.Handler(),
	}

	go func() {
		<-ctx.Done()
		ps.logger.Sugar().Info("Shutting down prometheus server")
		if err := httpServer.Shutdown(context.Background()); err != nil {
			ps.logger.Sugar().Errorw("Failed to shutdown prometheus server", zap.Error(err))
		}
	}()
	go func() {
		ps.logger.Sugar().Infow("Starting prometheus server", zap.Int("port", ps.config.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ps.logger.Sugar().Errorw("Prometheus server stopped", zap.Error(err))
		}
	}()
	return nil
}
