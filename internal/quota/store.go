package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maxwell142857/cs5500-group6/internal/kv"
)

const snapshotKey = "quota:snapshot"

// KVStore keeps the snapshot under a single key in the embedded KV store.
type KVStore struct {
	kv *kv.Store
}

// NewKVStore creates a snapshot store on top of kv.
func NewKVStore(s *kv.Store) *KVStore {
	return &KVStore{kv: s}
}

// Load returns the stored snapshot, or nil when none has been saved.
func (s *KVStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.kv.Get(snapshotKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding quota snapshot: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot. It never expires.
func (s *KVStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding quota snapshot: %w", err)
	}
	return s.kv.Set(snapshotKey, data, 0)
}
