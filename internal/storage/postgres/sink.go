package postgres

import (
	"context"
	"time"

	"ammcore/internal/model"
)

const publishTimeout = 5 * time.Second

// Sink adapts the store to the engine's event sink. If a snapshot source is
// set, each event also refreshes the pool's row.
type Sink struct {
	store     *Store
	snapshots func(poolID string) (model.PoolSnapshot, error)
}

func NewSink(store *Store, snapshots func(poolID string) (model.PoolSnapshot, error)) *Sink {
	return &Sink{store: store, snapshots: snapshots}
}

func (s *Sink) Publish(ev model.PoolEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.store.InsertEvents(ctx, []model.PoolEvent{ev}); err != nil {
		return err
	}
	if s.snapshots == nil {
		return nil
	}
	snap, err := s.snapshots(ev.PoolID)
	if err != nil {
		return err
	}
	return s.store.UpsertSnapshots(ctx, []model.PoolSnapshot{snap})
}
