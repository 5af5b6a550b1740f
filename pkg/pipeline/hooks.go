package pipeline

import (
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus/eventBusTypes"
)

func (p *Pipeline) HandleBlockProcessedHook(output *BlockOutput) {
	if p.eventBus == nil {
		return
	}
	p.eventBus.Publish(&eventBusTypes.Event{
		Name: eventBusTypes.Event_BlockProcessed,
		Data: &eventBusTypes.BlockProcessedData{
			BlockHeight:    output.Height,
			RunId:          p.runId,
			OperationCount: len(output.Operations),
			StateRoot:      output.StateRoot,
			Settlements:    output.Result.Settlements,
		},
	})
}
