package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestPairIDCanonicalOrder(t *testing.T) {
	if PairID("usdc", "atom") != "atom/usdc" {
		t.Fatalf("PairID not canonical: %s", PairID("usdc", "atom"))
	}
	if PairID("atom", "usdc") != PairID("usdc", "atom") {
		t.Fatalf("PairID depends on argument order")
	}
}

func TestNewPoolNormalizesAssets(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	pool := NewPool("usdc", "atom", 30, owner)

	if pool.AssetA != "atom" || pool.AssetB != "usdc" {
		t.Fatalf("assets not normalized: %s/%s", pool.AssetA, pool.AssetB)
	}
	if pool.ID != "atom/usdc" {
		t.Fatalf("pool id mismatch: %s", pool.ID)
	}
	if pool.ShareAsset() != "lp:atom/usdc" {
		t.Fatalf("share asset mismatch: %s", pool.ShareAsset())
	}
}

func TestReservesBySide(t *testing.T) {
	pool := NewPool("atom", "usdc", 30, common.Address{})
	pool.ReserveA = 100
	pool.ReserveB = 200

	in, out := pool.Reserves(SideAToB)
	if in != 100 || out != 200 {
		t.Fatalf("a_to_b reserves = (%d,%d)", in, out)
	}
	in, out = pool.Reserves(SideBToA)
	if in != 200 || out != 100 {
		t.Fatalf("b_to_a reserves = (%d,%d)", in, out)
	}
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("a_to_b")
	if err != nil || side != SideAToB {
		t.Fatalf("parse a_to_b: %v, %v", side, err)
	}
	side, err = ParseSide("b_to_a")
	if err != nil || side != SideBToA {
		t.Fatalf("parse b_to_a: %v, %v", side, err)
	}
	if _, err := ParseSide("sideways"); err == nil {
		t.Fatalf("expected error for unknown side")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	pool := NewPool("atom", "usdc", 30, common.HexToAddress("0x2222222222222222222222222222222222222222"))
	pool.ReserveA = 1_000_000
	pool.ReserveB = 2_000_000
	pool.ShareSupply = 1_414_213
	pool.CumulativeVolume = uint256.NewInt(123_456)
	pool.CumulativeFees = uint256.NewInt(789)

	original := pool.Snapshot()
	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded PoolSnapshot
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
	if decoded.CumulativeVolume != "123456" {
		t.Fatalf("volume snapshot mismatch: %s", decoded.CumulativeVolume)
	}
}
