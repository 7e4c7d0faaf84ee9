package model

// Operation kinds carried on pool events.
const (
	OpPoolCreated          = "pool_created"
	OpLiquidityAdded       = "liquidity_added"
	OpLiquidityRemoved     = "liquidity_removed"
	OpSwap                 = "swap"
	OpFeeUpdated           = "fee_updated"
	OpPauseUpdated         = "pause_updated"
	OpOwnershipTransferred = "ownership_transferred"
)

// PoolEvent records one successful pool operation for off-system observers.
// Amount fields are populated per operation kind; resulting reserves and
// share supply are always the post-commit values. Seq totally orders the
// events of one pool; events of distinct pools are not ordered relative to
// each other.
type PoolEvent struct {
	PoolID       string `json:"pool_id"`
	Seq          uint64 `json:"seq"`
	Op           string `json:"op"`
	Actor        string `json:"actor"`
	AmountA      uint64 `json:"amount_a,omitempty"`
	AmountB      uint64 `json:"amount_b,omitempty"`
	AmountIn     uint64 `json:"amount_in,omitempty"`
	AmountOut    uint64 `json:"amount_out,omitempty"`
	Side         string `json:"side,omitempty"`
	SharesMinted uint64 `json:"shares_minted,omitempty"`
	SharesBurned uint64 `json:"shares_burned,omitempty"`
	FeeBps       uint32 `json:"fee_bps,omitempty"`
	Paused       bool   `json:"paused,omitempty"`
	NewOwner     string `json:"new_owner,omitempty"`
	ReserveA     uint64 `json:"reserve_a"`
	ReserveB     uint64 `json:"reserve_b"`
	ShareSupply  uint64 `json:"share_supply"`
	Timestamp    int64  `json:"timestamp"`
}
