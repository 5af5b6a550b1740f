package snapshotStore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

var snapshotKeyPrefix = []byte("snapshot/")

// SnapshotStore keeps the mapping snapshot that follows each processed block, stored
// as a snappy-compressed binary archive under the block height.
type SnapshotStore struct {
	db     *leveldb.DB
	logger *zap.Logger
}

func NewSnapshotStore(path string, l *zap.Logger) (*SnapshotStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.NoCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store at '%s': %w", path, err)
	}
	return &SnapshotStore{db: db, logger: l}, nil
}

func NewInMemorySnapshotStore(l *zap.Logger) (*SnapshotStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{db: db, logger: l}, nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// heights sort in key order because they are big-endian.
func snapshotKey(height uint32) []byte {
	return binary.BigEndian.AppendUint32(append([]byte{}, snapshotKeyPrefix...), height)
}

func heightFromKey(key []byte) (uint32, error) {
	if len(key) != len(snapshotKeyPrefix)+4 {
		return 0, fmt.Errorf("malformed snapshot key %x", key)
	}
	return binary.BigEndian.Uint32(key[len(snapshotKeyPrefix):]), nil
}

func (s *SnapshotStore) Put(height uint32, snapshot *mappings.Snapshot) error {
	archive, err := mappings.EncodeSnapshotBinary(snapshot)
	if err != nil {
		return err
	}
	compressed := snappy.Encode(nil, archive)
	if err := s.db.Put(snapshotKey(height), compressed, nil); err != nil {
		return err
	}
	s.logger.Sugar().Debugw("Stored snapshot",
		zap.Uint32("blockHeight", height),
		zap.Int("archiveBytes", len(archive)),
		zap.Int("storedBytes", len(compressed)),
	)
	return nil
}

func (s *SnapshotStore) Get(height uint32) (*mappings.Snapshot, error) {
	data, err := s.db.Get(snapshotKey(height), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrSnapshotNotFound, height)
		}
		return nil, err
	}
	return decodeEntry(data)
}

func (s *SnapshotStore) Has(height uint32) (bool, error) {
	return s.db.Has(snapshotKey(height), nil)
}

// LatestAtOrBelow returns the newest snapshot stored at a height no greater than
// height.
func (s *SnapshotStore) LatestAtOrBelow(height uint32) (uint32, *mappings.Snapshot, error) {
	limit := util.BytesPrefix(snapshotKeyPrefix).Limit
	if height < ^uint32(0) {
		limit = snapshotKey(height + 1)
	}
	iter := s.db.NewIterator(&util.Range{Start: snapshotKey(0), Limit: limit}, nil)
	defer iter.Release()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("%w: none at or below %d", ErrSnapshotNotFound, height)
	}
	found, err := heightFromKey(iter.Key())
	if err != nil {
		return 0, nil, err
	}
	snapshot, err := decodeEntry(iter.Value())
	if err != nil {
		return 0, nil, err
	}
	return found, snapshot, nil
}

// DeleteFrom removes every snapshot at or above startHeight.
func (s *SnapshotStore) DeleteFrom(startHeight uint32) error {
	iter := s.db.NewIterator(&util.Range{
		Start: snapshotKey(startHeight),
		Limit: util.BytesPrefix(snapshotKeyPrefix).Limit,
	}, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}
	s.logger.Sugar().Infow("Deleting snapshots",
		zap.Uint32("startHeight", startHeight),
		zap.Int("count", batch.Len()),
	)
	return s.db.Write(batch, nil)
}

func decodeEntry(data []byte) (*mappings.Snapshot, error) {
	archive, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return mappings.DecodeSnapshotBinary(archive)
}
