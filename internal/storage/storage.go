package storage

import "ammcore/internal/model"

// Storage defines a sink for committed pool events.
type Storage interface {
	PutEventBatch(events []model.PoolEvent) error
}
