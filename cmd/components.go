package cmd

import (
	"context"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/internal/logger"
	"github.com/NethermindEth/staking-sidecar/internal/metrics"
	"github.com/NethermindEth/staking-sidecar/internal/metrics/prometheus"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/creditsOperations"
	"github.com/NethermindEth/staking-sidecar/pkg/database"
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus"
	"github.com/NethermindEth/staking-sidecar/pkg/pipeline"
	"github.com/NethermindEth/staking-sidecar/pkg/snapshotStore"
	"github.com/NethermindEth/staking-sidecar/pkg/stakingState"
	"github.com/NethermindEth/staking-sidecar/pkg/storage"
	"github.com/NethermindEth/staking-sidecar/pkg/storage/gormStore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// components are the long-lived pieces a command wires into a pipeline.
type components struct {
	cfg       *config.Config
	logger    *zap.Logger
	pipeline  *pipeline.Pipeline
	eventBus  *eventBus.EventBus
	store     storage.SettlementStore
	snapshots *snapshotStore.SnapshotStore
	db        *gorm.DB
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, LogFile: cfg.LogFile})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize logger")
	}
	return cfg, l, nil
}

func newComponents(ctx context.Context, cfg *config.Config, l *zap.Logger) (*components, error) {
	c := &components{cfg: cfg, logger: l}

	format, err := block.ParseFormat(cfg.BlockFormat)
	if err != nil {
		return nil, err
	}
	mode, err := block.ParseDecodeMode(cfg.DecodeMode)
	if err != nil {
		return nil, err
	}

	clients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup metrics clients")
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, clients)
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup metrics sink")
	}
	if cfg.PrometheusConfig.Enabled {
		server := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{Port: cfg.PrometheusConfig.Port}, l)
		if err := server.Start(ctx); err != nil {
			return nil, err
		}
	}

	if cfg.HasDatabase() {
		c.db, err = database.Open(&cfg.DatabaseConfig, l)
		if err != nil {
			return nil, err
		}
		c.store = gormStore.NewGormSettlementStore(c.db, l)
	}
	if cfg.SnapshotStoreConfig.Path != "" {
		c.snapshots, err = snapshotStore.NewSnapshotStore(cfg.SnapshotStoreConfig.Path, l)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	c.eventBus = eventBus.NewEventBus(l)

	c.pipeline = pipeline.NewPipeline(
		&pipeline.PipelineConfig{Format: format, Mode: mode},
		creditsOperations.NewExtractor(l),
		stakingState.NewEngine(l),
		c.store,
		c.snapshots,
		c.eventBus,
		sink,
		l,
	)
	l.Sugar().Infow("Initialized pipeline",
		zap.String("runId", c.pipeline.RunId()),
		zap.String("decodeMode", cfg.DecodeMode),
		zap.String("blockFormat", cfg.BlockFormat),
		zap.Bool("database", c.store != nil),
		zap.Bool("snapshotStore", c.snapshots != nil),
		zap.Int("metricsClients", len(clients)),
	)
	return c, nil
}

func (c *components) Close() {
	if c.snapshots != nil {
		if err := c.snapshots.Close(); err != nil {
			c.logger.Sugar().Errorw("Failed to close snapshot store", zap.Error(err))
		}
	}
	if c.db != nil {
		if err := database.Close(c.db); err != nil {
			c.logger.Sugar().Errorw("Failed to close database", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}
