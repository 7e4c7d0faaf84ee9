// Package amm holds the pure constant-product math. Amounts are uint64;
// every intermediate multiplication runs on 256-bit integers so overflow is
// detected before narrowing back.
package amm

import (
	"math/bits"

	"github.com/holiman/uint256"
)

const (
	// FeeDenomBps is the basis-point denominator: 10000 bps = 100%.
	FeeDenomBps = 10000

	// MinLiquidity is withheld from the first minter forever so the share
	// price can never degenerate at near-zero supply.
	MinLiquidity = 1000

	// PriceScale is the fixed-point factor for spot prices.
	PriceScale = 1_000_000

	// sqrtIterCap bounds the Babylonian iteration.
	sqrtIterCap = 256
)

func u256(x uint64) *uint256.Int {
	return uint256.NewInt(x)
}

// integerSqrt returns the largest y with y*y <= x, by Babylonian iteration.
func integerSqrt(x *uint256.Int) *uint256.Int {
	if x.IsZero() {
		return new(uint256.Int)
	}
	if x.LtUint64(4) {
		return u256(1)
	}
	z := x.Clone()
	t := new(uint256.Int).Rsh(x, 1)
	t.AddUint64(t, 1)
	for i := 0; i < sqrtIterCap && t.Lt(z); i++ {
		z.Set(t)
		t.Div(x, z)
		t.Add(t, z)
		t.Rsh(t, 1)
	}
	return z
}

// IntegerSqrt is the uint64 form of integerSqrt. IntegerSqrt(0) == 0.
func IntegerSqrt(x uint64) uint64 {
	return integerSqrt(u256(x)).Uint64()
}

// SwapOutput prices a trade with no fee:
//
//	amountOut = reserveOut * amountIn / (reserveIn + amountIn)
func SwapOutput(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrDivisionByZero
	}
	if amountIn == 0 {
		return 0, ErrInsufficientInputAmount
	}

	num := new(uint256.Int).Mul(u256(reserveOut), u256(amountIn))
	den := new(uint256.Int).Add(u256(reserveIn), u256(amountIn))
	out := num.Div(num, den)
	if !out.IsUint64() {
		return 0, ErrOverflow
	}
	return out.Uint64(), nil
}

// SwapOutputWithFee deducts the fee from the input before applying the
// constant-product formula:
//
//	effIn     = amountIn * (10000 - feeBps)
//	amountOut = reserveOut * effIn / (reserveIn*10000 + effIn)
//
// feeBps == 10000 always yields 0.
func SwapOutputWithFee(reserveIn, reserveOut, amountIn uint64, feeBps uint32) (uint64, error) {
	if feeBps > FeeDenomBps {
		return 0, ErrInvalidFee
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrDivisionByZero
	}
	if amountIn == 0 {
		return 0, ErrInsufficientInputAmount
	}

	effIn := new(uint256.Int).Mul(u256(amountIn), u256(uint64(FeeDenomBps-feeBps)))
	num := new(uint256.Int).Mul(u256(reserveOut), effIn)
	den := new(uint256.Int).Mul(u256(reserveIn), u256(FeeDenomBps))
	den.Add(den, effIn)
	out := num.Div(num, den)
	if !out.IsUint64() {
		return 0, ErrOverflow
	}
	return out.Uint64(), nil
}

// PriceImpactBps compares the spot price before and after a fee-less trade
// of amountIn and returns the absolute relative change in basis points.
// Prices are scaled by PriceScale before comparison.
func PriceImpactBps(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	out, err := SwapOutput(reserveIn, reserveOut, amountIn)
	if err != nil {
		return 0, err
	}

	pre := new(uint256.Int).Mul(u256(reserveOut), u256(PriceScale))
	pre.Div(pre, u256(reserveIn))
	if pre.IsZero() {
		return 0, ErrDivisionByZero
	}

	post := new(uint256.Int).Mul(u256(reserveOut-out), u256(PriceScale))
	post.Div(post, new(uint256.Int).Add(u256(reserveIn), u256(amountIn)))

	diff := new(uint256.Int)
	if pre.Lt(post) {
		diff.Sub(post, pre)
	} else {
		diff.Sub(pre, post)
	}
	diff.Mul(diff, u256(FeeDenomBps))
	diff.Div(diff, pre)
	if !diff.IsUint64() {
		return 0, ErrOverflow
	}
	return diff.Uint64(), nil
}

// MintAmount computes the liquidity shares minted for a deposit.
//
// With zero supply the deposit bootstraps the pool: the geometric mean of
// the amounts, minus the permanently withheld MinLiquidity. Afterwards the
// minimum of the two proportional shares is minted, so an unbalanced
// deposit is priced at its worse side.
func MintAmount(amountA, amountB, reserveA, reserveB, shareSupply uint64) (uint64, error) {
	if shareSupply == 0 {
		prod := new(uint256.Int).Mul(u256(amountA), u256(amountB))
		shares := integerSqrt(prod)
		if !shares.GtUint64(MinLiquidity) {
			return 0, ErrInsufficientLiquidityMinted
		}
		shares.SubUint64(shares, MinLiquidity)
		if !shares.IsUint64() {
			return 0, ErrOverflow
		}
		return shares.Uint64(), nil
	}

	if reserveA == 0 || reserveB == 0 {
		return 0, ErrDivisionByZero
	}

	sharesA := new(uint256.Int).Mul(u256(amountA), u256(shareSupply))
	sharesA.Div(sharesA, u256(reserveA))
	sharesB := new(uint256.Int).Mul(u256(amountB), u256(shareSupply))
	sharesB.Div(sharesB, u256(reserveB))

	minted := sharesA
	if sharesB.Lt(sharesA) {
		minted = sharesB
	}
	if !minted.IsUint64() {
		return 0, ErrOverflow
	}
	if minted.IsZero() {
		return 0, ErrInsufficientLiquidityMinted
	}
	return minted.Uint64(), nil
}

// OptimalDeposit clamps a desired deposit down to the pool's current ratio,
// choosing whichever side is the binding constraint.
func OptimalDeposit(desiredA, desiredB, reserveA, reserveB uint64) (uint64, uint64, error) {
	if reserveA == 0 || reserveB == 0 {
		return 0, 0, ErrDivisionByZero
	}

	optB := new(uint256.Int).Mul(u256(desiredA), u256(reserveB))
	optB.Div(optB, u256(reserveA))
	if optB.IsUint64() && optB.Uint64() <= desiredB {
		return desiredA, optB.Uint64(), nil
	}

	optA := new(uint256.Int).Mul(u256(desiredB), u256(reserveA))
	optA.Div(optA, u256(reserveB))
	if !optA.IsUint64() {
		return 0, 0, ErrOverflow
	}
	return optA.Uint64(), desiredB, nil
}

// WithdrawAmounts converts shares back to reserve amounts, rounding down.
func WithdrawAmounts(shares, reserveA, reserveB, shareSupply uint64) (uint64, uint64, error) {
	if shareSupply == 0 {
		return 0, 0, ErrDivisionByZero
	}
	if shares > shareSupply {
		return 0, 0, ErrInsufficientLiquidityBurned
	}

	amountA := new(uint256.Int).Mul(u256(shares), u256(reserveA))
	amountA.Div(amountA, u256(shareSupply))
	amountB := new(uint256.Int).Mul(u256(shares), u256(reserveB))
	amountB.Div(amountB, u256(shareSupply))

	// shares <= shareSupply, so both quotients fit in 64 bits.
	return amountA.Uint64(), amountB.Uint64(), nil
}

// WithinTolerance reports whether actual lies inside a symmetric band of
// toleranceBps basis points around expected.
func WithinTolerance(expected, actual uint64, toleranceBps uint32) bool {
	var diff uint64
	if actual > expected {
		diff = actual - expected
	} else {
		diff = expected - actual
	}

	lhs := new(uint256.Int).Mul(u256(diff), u256(FeeDenomBps))
	rhs := new(uint256.Int).Mul(u256(expected), u256(uint64(toleranceBps)))
	return !lhs.Gt(rhs)
}

// ProductNonDecreasing reports whether the constant-product invariant holds
// across a reserve transition, allowing one unit of rounding slack.
func ProductNonDecreasing(oldA, oldB, newA, newB uint64) bool {
	oldK := new(uint256.Int).Mul(u256(oldA), u256(oldB))
	newK := new(uint256.Int).Mul(u256(newA), u256(newB))
	newK.AddUint64(newK, 1)
	return !newK.Lt(oldK)
}

// CheckedAdd adds two amounts, failing on 64-bit overflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub subtracts b from a, failing on underflow.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// CheckedMul multiplies two amounts, failing on 64-bit overflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
