package amm

import "errors"

// Calculation errors. Engine operations wrap these, callers branch with
// errors.Is.
var (
	ErrDivisionByZero              = errors.New("division by zero")
	ErrOverflow                    = errors.New("arithmetic overflow")
	ErrUnderflow                   = errors.New("arithmetic underflow")
	ErrInsufficientInputAmount     = errors.New("input amount must be greater than zero")
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrInvalidFee                  = errors.New("fee exceeds 10000 basis points")
)
