// Package event carries successful pool operations to off-system observers.
package event

import (
	"sync"

	"go.uber.org/zap"

	"ammcore/internal/model"
)

// Sink receives one append-only record per committed operation. Sinks run
// after the commit; a sink failure never rolls the operation back.
type Sink interface {
	Publish(event model.PoolEvent) error
}

// LogSink writes events to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ev model.PoolEvent) error {
	s.logger.Info("pool event",
		zap.String("pool", ev.PoolID),
		zap.String("op", ev.Op),
		zap.String("actor", ev.Actor),
		zap.Uint64("amount_in", ev.AmountIn),
		zap.Uint64("amount_out", ev.AmountOut),
		zap.Uint64("shares_minted", ev.SharesMinted),
		zap.Uint64("shares_burned", ev.SharesBurned),
		zap.Uint64("reserve_a", ev.ReserveA),
		zap.Uint64("reserve_b", ev.ReserveB),
		zap.Uint64("share_supply", ev.ShareSupply),
	)
	return nil
}

// Fanout publishes to every wrapped sink, returning the first error.
type Fanout []Sink

func (f Fanout) Publish(ev model.PoolEvent) error {
	var firstErr error
	for _, sink := range f {
		if err := sink.Publish(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Recorder collects events in memory. Test substitute for real sinks.
type Recorder struct {
	mu     sync.Mutex
	events []model.PoolEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ev model.PoolEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []model.PoolEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PoolEvent, len(r.events))
	copy(out, r.events)
	return out
}
