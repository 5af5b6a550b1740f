package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBlockNotFound        = errors.New("block not found")
	ErrBlockAlreadyRecorded = errors.New("block already recorded")
)

// SettlementStore persists the outcome of processing a block: the settlements it
// produced and the state root over them.
type SettlementStore interface {
	// SaveBlockResult writes the block, its settlements and its state root atomically.
	SaveBlockResult(ctx context.Context, result *BlockResult) error
	GetLatestProcessedBlock(ctx context.Context) (*ProcessedBlock, error)
	GetProcessedBlock(ctx context.Context, height uint32) (*ProcessedBlock, error)
	GetSettlementsForBlock(ctx context.Context, height uint32) ([]*Settlement, error)
	GetSettlementsForBeneficiary(ctx context.Context, beneficiary string) ([]*Settlement, error)
	GetStateRootForBlock(ctx context.Context, height uint32) (*StateRoot, error)

	// DeleteBlocksFrom removes every record at or above startHeight so a range can be
	// replayed.
	DeleteBlocksFrom(ctx context.Context, startHeight uint32) error
}

type BlockResult struct {
	Block       *ProcessedBlock
	Settlements []*Settlement
	StateRoot   *StateRoot
}

// Tables.
type ProcessedBlock struct {
	Height         uint32 `gorm:"primaryKey;autoIncrement:false"`
	BlockTime      time.Time
	OperationCount int
	RunId          string
	CreatedAt      time.Time
}

type Settlement struct {
	BlockHeight  uint32 `gorm:"primaryKey;autoIncrement:false"`
	TransitionId string `gorm:"primaryKey"`
	Position     int
	Function     string
	Staker       string
	Beneficiary  string          `gorm:"index"`
	Microcredits decimal.Decimal `gorm:"type:text"`
	CreatedAt    time.Time
}

type StateRoot struct {
	BlockHeight uint32 `gorm:"primaryKey;autoIncrement:false"`
	Root        string
	CreatedAt   time.Time
}

func AllTables() []interface{} {
	return []interface{}{
		&ProcessedBlock{},
		&Settlement{},
		&StateRoot{},
	}
}
