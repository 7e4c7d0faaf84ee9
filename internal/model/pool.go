package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Side selects the direction of a swap.
type Side uint8

const (
	SideAToB Side = iota
	SideBToA
)

func (s Side) String() string {
	if s == SideAToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// ParseSide parses the wire form of a swap direction.
func ParseSide(raw string) (Side, error) {
	switch raw {
	case "a_to_b":
		return SideAToB, nil
	case "b_to_a":
		return SideBToA, nil
	default:
		return 0, fmt.Errorf("invalid swap side: %q", raw)
	}
}

// PairID returns the canonical pool identifier for an asset pair. Assets are
// ordered lexicographically so both orderings map to the same pool.
func PairID(assetA, assetB string) string {
	if assetA > assetB {
		assetA, assetB = assetB, assetA
	}
	return assetA + "/" + assetB
}

// Pool is the full state of one trading pair. Reserves and share supply are
// 64-bit amounts; the cumulative totals are 256-bit and only ever grow.
type Pool struct {
	ID          string
	AssetA      string
	AssetB      string
	ReserveA    uint64
	ReserveB    uint64
	ShareSupply uint64
	FeeBps      uint32
	Paused      bool
	Owner       common.Address

	// Seq counts committed operations on this pool. It is assigned under
	// the pool's exclusive lock, so events carry a total per-pool order
	// even when sinks observe them interleaved.
	Seq uint64

	CumulativeVolume *uint256.Int
	CumulativeFees   *uint256.Int
}

// NewPool returns a pool with zeroed reserves and accumulators. Reserves and
// share supply are set by the engine's create operation.
func NewPool(assetA, assetB string, feeBps uint32, owner common.Address) *Pool {
	if assetA > assetB {
		assetA, assetB = assetB, assetA
	}
	return &Pool{
		ID:               PairID(assetA, assetB),
		AssetA:           assetA,
		AssetB:           assetB,
		FeeBps:           feeBps,
		Owner:            owner,
		CumulativeVolume: new(uint256.Int),
		CumulativeFees:   new(uint256.Int),
	}
}

// ShareAsset is the ledger asset name under which a pool's liquidity shares
// are held for each provider.
func (p *Pool) ShareAsset() string {
	return "lp:" + p.ID
}

// Reserves returns the reserves oriented for a swap on the given side.
func (p *Pool) Reserves(side Side) (reserveIn, reserveOut uint64) {
	if side == SideAToB {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// Snapshot freezes the pool state into its storable form.
func (p *Pool) Snapshot() PoolSnapshot {
	return PoolSnapshot{
		ID:               p.ID,
		AssetA:           p.AssetA,
		AssetB:           p.AssetB,
		ReserveA:         p.ReserveA,
		ReserveB:         p.ReserveB,
		ShareSupply:      p.ShareSupply,
		FeeBps:           p.FeeBps,
		Paused:           p.Paused,
		Owner:            p.Owner.Hex(),
		CumulativeVolume: p.CumulativeVolume.Dec(),
		CumulativeFees:   p.CumulativeFees.Dec(),
	}
}

// PoolSnapshot is the persisted pool record. Wide accumulators travel as
// decimal strings.
type PoolSnapshot struct {
	ID               string `json:"id"`
	AssetA           string `json:"asset_a"`
	AssetB           string `json:"asset_b"`
	ReserveA         uint64 `json:"reserve_a"`
	ReserveB         uint64 `json:"reserve_b"`
	ShareSupply      uint64 `json:"share_supply"`
	FeeBps           uint32 `json:"fee_bps"`
	Paused           bool   `json:"paused"`
	Owner            string `json:"owner"`
	CumulativeVolume string `json:"cumulative_volume"`
	CumulativeFees   string `json:"cumulative_fees"`
}
