package pipeline

import (
	"context"
	"time"

	"github.com/NethermindEth/staking-sidecar/internal/metrics"
	"github.com/NethermindEth/staking-sidecar/internal/metrics/metricsTypes"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/creditsOperations"
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"github.com/NethermindEth/staking-sidecar/pkg/report"
	"github.com/NethermindEth/staking-sidecar/pkg/snapshotStore"
	"github.com/NethermindEth/staking-sidecar/pkg/stakingState"
	"github.com/NethermindEth/staking-sidecar/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PipelineConfig struct {
	Format block.Format
	Mode   block.DecodeMode
}

// Pipeline turns blocks into settlements and next-block snapshots. The settlement
// store, snapshot store and event bus are optional.
type Pipeline struct {
	Logger        *zap.Logger
	config        *PipelineConfig
	extractor     *creditsOperations.Extractor
	engine        *stakingState.Engine
	store         storage.SettlementStore
	snapshotStore *snapshotStore.SnapshotStore
	eventBus      eventBusTypes.IEventBus
	metricsSink   *metrics.MetricsSink
	runId         string
}

type BlockOutput struct {
	Height     uint32
	Timestamp  int64
	Operations []creditsOperations.Operation
	Result     *stakingState.Result
	StateRoot  stakingState.StateRoot
}

func NewPipeline(
	cfg *PipelineConfig,
	ex *creditsOperations.Extractor,
	eng *stakingState.Engine,
	store storage.SettlementStore,
	ss *snapshotStore.SnapshotStore,
	eb eventBusTypes.IEventBus,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *Pipeline {
	return &Pipeline{
		Logger:        l,
		config:        cfg,
		extractor:     ex,
		engine:        eng,
		store:         store,
		snapshotStore: ss,
		eventBus:      eb,
		metricsSink:   ms,
		runId:         uuid.New().String(),
	}
}

func (p *Pipeline) RunId() string {
	return p.runId
}

// ProcessBlockBytes decodes raw with the configured format and mode, then processes
// the block against snapshot.
func (p *Pipeline) ProcessBlockBytes(ctx context.Context, raw []byte, snapshot *mappings.Snapshot) (*BlockOutput, error) {
	b, err := block.Decode(raw, p.config.Format, p.config.Mode)
	if err != nil {
		p.recordFailure("decode")
		p.Logger.Sugar().Errorw("Failed to decode block", zap.Error(err))
		return nil, errors.Wrap(err, "failed to decode block")
	}
	return p.ProcessBlock(ctx, b, snapshot)
}

// ProcessBlock extracts the credits operations of b, applies them to snapshot and
// persists the outcome. snapshot is not modified.
func (p *Pipeline) ProcessBlock(ctx context.Context, b *block.Block, snapshot *mappings.Snapshot) (*BlockOutput, error) {
	start := time.Now()
	p.Logger.Sugar().Debugw("Running pipeline for block", zap.Uint32("blockHeight", b.Height))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ops, err := p.extractor.Extract(b)
	if err != nil {
		p.recordFailure("extract")
		p.Logger.Sugar().Errorw("Failed to extract operations", zap.Uint32("blockHeight", b.Height), zap.Error(err))
		return nil, errors.Wrapf(err, "failed to extract operations from block %d", b.Height)
	}

	result, err := p.engine.Apply(snapshot, ops, b.Height)
	if err != nil {
		p.recordFailure("apply")
		return nil, errors.Wrapf(err, "failed to apply block %d", b.Height)
	}

	root, err := stakingState.GenerateStateRoot(b.Height, result)
	if err != nil {
		p.recordFailure("stateRoot")
		p.Logger.Sugar().Errorw("Failed to generate state root", zap.Uint32("blockHeight", b.Height), zap.Error(err))
		return nil, errors.Wrapf(err, "failed to generate state root for block %d", b.Height)
	}

	output := &BlockOutput{
		Height:     b.Height,
		Timestamp:  b.Timestamp,
		Operations: ops,
		Result:     result,
		StateRoot:  root,
	}

	if err := p.persist(ctx, output); err != nil {
		p.recordFailure("persist")
		return nil, err
	}

	p.HandleBlockProcessedHook(output)
	p.recordSuccess(output, time.Since(start))

	p.Logger.Sugar().Debugw("Processed block",
		zap.Uint32("blockHeight", b.Height),
		zap.Int("operations", len(ops)),
		zap.Int("settlements", result.Settlements.Len()),
		zap.String("stateRoot", string(root)),
		zap.Duration("duration", time.Since(start)),
	)
	return output, nil
}

func (p *Pipeline) persist(ctx context.Context, output *BlockOutput) error {
	if p.store != nil {
		if err := p.store.SaveBlockResult(ctx, p.blockResult(output)); err != nil {
			return errors.Wrapf(err, "failed to save block %d", output.Height)
		}
	}
	if p.snapshotStore != nil {
		if err := p.snapshotStore.Put(output.Height, output.Result.Snapshot); err != nil {
			return errors.Wrapf(err, "failed to store snapshot for block %d", output.Height)
		}
	}
	return nil
}

func (p *Pipeline) blockResult(output *BlockOutput) *storage.BlockResult {
	r := report.NewReport(output.Height, output.Operations, output.Result, output.StateRoot)

	settlements := make([]*storage.Settlement, 0, len(r.Settlements))
	for i, row := range r.Settlements {
		settlements = append(settlements, &storage.Settlement{
			BlockHeight:  output.Height,
			TransitionId: row.TransitionId,
			Position:     i,
			Function:     row.Function,
			Staker:       row.Staker,
			Beneficiary:  row.Beneficiary,
			Microcredits: decimal.RequireFromString(row.Microcredits),
		})
	}
	return &storage.BlockResult{
		Block: &storage.ProcessedBlock{
			Height:         output.Height,
			BlockTime:      time.Unix(output.Timestamp, 0).UTC(),
			OperationCount: len(output.Operations),
			RunId:          p.runId,
		},
		Settlements: settlements,
		StateRoot: &storage.StateRoot{
			BlockHeight: output.Height,
			Root:        string(output.StateRoot),
		},
	}
}

func (p *Pipeline) recordSuccess(output *BlockOutput, duration time.Duration) {
	if p.metricsSink == nil {
		return
	}
	counts := make(map[string]int)
	for _, op := range output.Operations {
		counts[op.Function()]++
	}
	for function, count := range counts {
		_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_OperationsApplied, []metricsTypes.MetricsLabel{
			{Name: "function", Value: function},
		}, float64(count))
	}
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_BlockProcessed, nil, 1)
	_ = p.metricsSink.Gauge(metricsTypes.Metric_Gauge_CurrentBlockHeight, float64(output.Height), nil)
	_ = p.metricsSink.Timing(metricsTypes.Metric_Timing_BlockProcessDuration, duration, nil)
}

func (p *Pipeline) recordFailure(reason string) {
	if p.metricsSink == nil {
		return
	}
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_BlockFailed, []metricsTypes.MetricsLabel{
		{Name: "reason", Value: reason},
	}, 1)
}
