package pipeline

import (
	"context"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// BlockJob is a block paired with the snapshot it applies to.
type BlockJob struct {
	Block    *block.Block
	Snapshot *mappings.Snapshot
}

// RunBatch processes independent jobs on up to workers goroutines. Outputs keep the
// order of jobs. The first failure cancels the remaining jobs.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []*BlockJob, workers int) ([]*BlockOutput, error) {
	if workers < 1 {
		workers = 1
	}
	outputs := make([]*BlockOutput, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			output, err := p.ProcessBlock(gctx, job.Block, job.Snapshot)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			outputs[i] = output
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

type BlockFetcher interface {
	GetBlock(ctx context.Context, height uint32, mode block.DecodeMode) (*block.Block, error)
}

// Replay processes the heights in [start, end] in order, feeding each block's
// snapshot to the next. Up to workers blocks are fetched ahead concurrently.
// onBlock, if set, is called after each block.
func (p *Pipeline) Replay(
	ctx context.Context,
	fetcher BlockFetcher,
	start uint32,
	end uint32,
	initial *mappings.Snapshot,
	workers int,
	onBlock func(output *BlockOutput),
) (*mappings.Snapshot, error) {
	if end < start {
		return nil, fmt.Errorf("invalid replay range %d..%d", start, end)
	}
	if workers < 1 {
		workers = 1
	}

	snapshot := initial
	for windowStart := uint64(start); windowStart <= uint64(end); windowStart += uint64(workers) {
		windowEnd := min(windowStart+uint64(workers)-1, uint64(end))
		blocks := make([]*block.Block, windowEnd-windowStart+1)

		g, gctx := errgroup.WithContext(ctx)
		for i := range blocks {
			height := uint32(windowStart) + uint32(i)
			g.Go(func() error {
				b, err := fetcher.GetBlock(gctx, height, p.config.Mode)
				if err != nil {
					return fmt.Errorf("failed to fetch block %d: %w", height, err)
				}
				if b.Height != height {
					return fmt.Errorf("fetched block %d has height %d", height, b.Height)
				}
				blocks[i] = b
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			p.Logger.Sugar().Errorw("Failed to fetch blocks",
				zap.Uint64("windowStart", windowStart),
				zap.Uint64("windowEnd", windowEnd),
				zap.Error(err),
			)
			return nil, err
		}

		for _, b := range blocks {
			output, err := p.ProcessBlock(ctx, b, snapshot)
			if err != nil {
				return nil, err
			}
			snapshot = output.Result.Snapshot
			if onBlock != nil {
				onBlock(output)
			}
		}
	}
	return snapshot, nil
}
