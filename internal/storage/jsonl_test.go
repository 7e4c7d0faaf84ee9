package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ammcore/internal/model"
)

func TestJsonlAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s := NewJsonlStorage(path)

	batch := []model.PoolEvent{
		{PoolID: "atom/usdc", Op: model.OpPoolCreated, ReserveA: 1000, ReserveB: 2000, ShareSupply: 1414},
		{PoolID: "atom/usdc", Op: model.OpSwap, AmountIn: 10, AmountOut: 19, ReserveA: 1010, ReserveB: 1981, ShareSupply: 1414},
	}
	if err := s.PutEventBatch(batch); err != nil {
		t.Fatalf("put batch: %v", err)
	}
	if err := s.Publish(model.PoolEvent{PoolID: "atom/usdc", Op: model.OpPauseUpdated, Paused: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var decoded []model.PoolEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev model.PoolEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		decoded = append(decoded, ev)
	}

	if len(decoded) != 3 {
		t.Fatalf("line count = %d, want 3", len(decoded))
	}
	if decoded[1].Op != model.OpSwap || decoded[1].AmountOut != 19 {
		t.Fatalf("swap line mismatch: %+v", decoded[1])
	}
	if !decoded[2].Paused {
		t.Fatalf("pause line mismatch: %+v", decoded[2])
	}
}
