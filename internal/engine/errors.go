package engine

import "errors"

// Operation guard errors. Math-level kinds live in internal/amm, ledger
// kinds in internal/ledger, registry kinds in internal/registry; engine
// operations surface all of them unchanged so callers can tell a slippage
// failure from a paused pool from a short balance.
var (
	ErrSlippageExceeded      = errors.New("slippage tolerance exceeded")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrPoolPaused            = errors.New("pool is paused")
	ErrUnauthorized          = errors.New("caller is not the pool owner")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidPair           = errors.New("assets must differ")
	ErrInvariantBroken       = errors.New("constant product invariant broken")
)
