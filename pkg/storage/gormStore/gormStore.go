package gormStore

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settlementBatchSize = 500

type GormSettlementStore struct {
	Db     *gorm.DB
	Logger *zap.Logger
}

func NewGormSettlementStore(db *gorm.DB, l *zap.Logger) *GormSettlementStore {
	return &GormSettlementStore{
		Db:     db,
		Logger: l,
	}
}

func (s *GormSettlementStore) SaveBlockResult(ctx context.Context, result *storage.BlockResult) error {
	height := result.Block.Height
	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if res := tx.Model(&storage.ProcessedBlock{}).Where("height = ?", height).Count(&count); res.Error != nil {
			return res.Error
		}
		if count > 0 {
			return fmt.Errorf("%w: %d", storage.ErrBlockAlreadyRecorded, height)
		}

		if res := tx.Create(result.Block); res.Error != nil {
			return fmt.Errorf("failed to insert block '%d': %w", height, res.Error)
		}
		if len(result.Settlements) > 0 {
			if res := tx.CreateInBatches(result.Settlements, settlementBatchSize); res.Error != nil {
				return fmt.Errorf("failed to insert settlements for block '%d': %w", height, res.Error)
			}
		}
		if result.StateRoot != nil {
			if res := tx.Create(result.StateRoot); res.Error != nil {
				return fmt.Errorf("failed to insert state root for block '%d': %w", height, res.Error)
			}
		}
		return nil
	})
	if err != nil {
		s.Logger.Sugar().Errorw("Failed to save block result",
			zap.Uint32("blockHeight", height),
			zap.Error(err),
		)
		return err
	}
	s.Logger.Sugar().Debugw("Saved block result",
		zap.Uint32("blockHeight", height),
		zap.Int("settlements", len(result.Settlements)),
	)
	return nil
}

func (s *GormSettlementStore) GetLatestProcessedBlock(ctx context.Context) (*storage.ProcessedBlock, error) {
	block := &storage.ProcessedBlock{}
	res := s.Db.WithContext(ctx).Model(&storage.ProcessedBlock{}).Order("height desc").First(block)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, storage.ErrBlockNotFound
		}
		return nil, res.Error
	}
	return block, nil
}

func (s *GormSettlementStore) GetProcessedBlock(ctx context.Context, height uint32) (*storage.ProcessedBlock, error) {
	block := &storage.ProcessedBlock{}
	res := s.Db.WithContext(ctx).Where("height = ?", height).First(block)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", storage.ErrBlockNotFound, height)
		}
		return nil, res.Error
	}
	return block, nil
}

func (s *GormSettlementStore) GetSettlementsForBlock(ctx context.Context, height uint32) ([]*storage.Settlement, error) {
	settlements := make([]*storage.Settlement, 0)
	res := s.Db.WithContext(ctx).
		Where("block_height = ?", height).
		Order("position asc").
		Find(&settlements)
	if res.Error != nil {
		return nil, res.Error
	}
	return settlements, nil
}

func (s *GormSettlementStore) GetSettlementsForBeneficiary(ctx context.Context, beneficiary string) ([]*storage.Settlement, error) {
	settlements := make([]*storage.Settlement, 0)
	res := s.Db.WithContext(ctx).
		Where("beneficiary = ?", beneficiary).
		Order("block_height asc").
		Order("position asc").
		Find(&settlements)
	if res.Error != nil {
		return nil, res.Error
	}
	return settlements, nil
}

func (s *GormSettlementStore) GetStateRootForBlock(ctx context.Context, height uint32) (*storage.StateRoot, error) {
	root := &storage.StateRoot{}
	res := s.Db.WithContext(ctx).Where("block_height = ?", height).First(root)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", storage.ErrBlockNotFound, height)
		}
		return nil, res.Error
	}
	return root, nil
}

func (s *GormSettlementStore) DeleteBlocksFrom(ctx context.Context, startHeight uint32) error {
	return s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Where("block_height >= ?", startHeight).Delete(&storage.Settlement{}); res.Error != nil {
			return res.Error
		}
		if res := tx.Where("block_height >= ?", startHeight).Delete(&storage.StateRoot{}); res.Error != nil {
			return res.Error
		}
		res := tx.Where("height >= ?", startHeight).Delete(&storage.ProcessedBlock{})
		if res.Error != nil {
			return res.Error
		}
		s.Logger.Sugar().Infow("Deleted processed blocks",
			zap.Uint32("startHeight", startHeight),
			zap.Int64("blocks", res.RowsAffected),
		)
		return nil
	})
}
