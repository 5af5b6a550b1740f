package cmd

import (
	"context"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/internal/shutdown"
	"github.com/NethermindEth/staking-sidecar/pkg/clients/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"github.com/NethermindEth/staking-sidecar/pkg/pipeline"
	"github.com/NethermindEth/staking-sidecar/pkg/snapshotStore"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a range of blocks fetched from an Aleo node",
	Long: `Fetch blocks from an Aleo node and apply them in order, starting from the newest stored
snapshot below the range. Requires a snapshot store; results are persisted when a database is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindCommandFlags(cmd); err != nil {
			return err
		}
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AleoRpcConfig.BaseUrl == "" {
			return errors.New("an Aleo node url is required")
		}
		if cfg.SnapshotStoreConfig.Path == "" {
			return errors.New("replay requires a snapshot store path")
		}
		ctx, stop := shutdown.ContextWithShutdown(cmd.Context(), l)
		defer stop()

		c, err := newComponents(ctx, cfg, l)
		if err != nil {
			return err
		}
		defer c.Close()

		client := aleo.NewClient(aleo.ConvertGlobalConfigToAleoConfig(cfg), l)

		end := cfg.ReplayConfig.EndAt
		if end == 0 {
			if end, err = client.GetLatestHeight(ctx); err != nil {
				return err
			}
		}
		start, initial, err := c.replayStart(ctx, cfg.ReplayConfig.StartAt)
		if err != nil {
			return err
		}
		if start > end {
			l.Sugar().Infow("Nothing to replay", zap.Uint32("start", start), zap.Uint32("end", end))
			return nil
		}

		consumer := c.logProcessedBlocks(ctx)
		defer c.eventBus.Unsubscribe(consumer)

		bar := progressbar.Default(int64(end-start)+1, "replaying blocks")
		final, err := c.pipeline.Replay(ctx, client, start, end, initial, cfg.ReplayConfig.Workers, func(output *pipeline.BlockOutput) {
			_ = bar.Add(1)
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		l.Sugar().Infow("Replay finished",
			zap.Uint32("start", start),
			zap.Uint32("end", end),
			zap.Int("bonded", final.Bonded.Len()),
			zap.Int("unbonding", final.Unbonding.Len()),
		)
		if cfg.ReplayConfig.OutputDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), final.String())
			return nil
		}
		return writeSnapshotFiles(cfg.ReplayConfig.OutputDir, final)
	},
}

func init() {
	replayCmd.Flags().Uint32(config.ReplayStartAt, 0, "First block height to replay")
	replayCmd.Flags().Uint32(config.ReplayEndAt, 0, "Last block height to replay (default: the node's latest block)")
	replayCmd.Flags().Int(config.ReplayWorkers, 4, "Number of blocks fetched concurrently")
	replayCmd.Flags().String(config.ReplayOutputDir, "", "Directory for the final mappings; printed to stdout if unset")
}

// replayStart finds the snapshot to resume from and clears anything recorded at or
// above the height replay will start at.
func (c *components) replayStart(ctx context.Context, requested uint32) (uint32, *mappings.Snapshot, error) {
	start := requested
	initial := mappings.NewSnapshot()

	if requested > 0 {
		height, snapshot, err := c.snapshots.LatestAtOrBelow(requested - 1)
		switch {
		case err == nil:
			start, initial = height+1, snapshot
		case errors.Is(err, snapshotStore.ErrSnapshotNotFound):
			c.logger.Sugar().Warnw("No stored snapshot below start height, starting from empty mappings",
				zap.Uint32("startAt", requested),
			)
		default:
			return 0, nil, err
		}
	}

	if err := c.snapshots.DeleteFrom(start); err != nil {
		return 0, nil, err
	}
	if c.store != nil {
		if err := c.store.DeleteBlocksFrom(ctx, start); err != nil {
			return 0, nil, err
		}
	}
	if start != requested {
		c.logger.Sugar().Infow("Resuming replay from stored snapshot",
			zap.Uint32("requestedStart", requested),
			zap.Uint32("start", start),
		)
	}
	return start, initial, nil
}

func (c *components) logProcessedBlocks(ctx context.Context) *eventBusTypes.Consumer {
	consumer := &eventBusTypes.Consumer{
		Id:      eventBusTypes.ConsumerId(fmt.Sprintf("replay-%s", c.pipeline.RunId())),
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, 100),
	}
	c.eventBus.Subscribe(consumer)

	go func() {
		for {
			select {
			case event := <-consumer.Channel:
				data, ok := event.Data.(*eventBusTypes.BlockProcessedData)
				if !ok {
					continue
				}
				c.logger.Sugar().Debugw("Block processed",
					zap.Uint32("blockHeight", data.BlockHeight),
					zap.Int("operations", data.OperationCount),
					zap.Int("settlements", data.Settlements.Len()),
					zap.String("stateRoot", string(data.StateRoot)),
				)
			case <-ctx.Done():
				return
			}
		}
	}()
	return consumer
}
