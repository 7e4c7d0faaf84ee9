// Package engine implements the pool state machine: every mutating
// operation validates all preconditions against a consistent view of the
// pool, then applies all mutations, then emits one event. Any failed check
// aborts the whole operation with pool state untouched.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammcore/internal/amm"
	"ammcore/internal/event"
	"ammcore/internal/ledger"
	"ammcore/internal/model"
	"ammcore/internal/registry"
)

// MinInitialReserve is the smallest amount accepted on either side of the
// first deposit.
const MinInitialReserve = 1000

// Engine executes pool operations. Mutations on one pool are serialized by
// the registry's per-pool lock; distinct pools proceed independently.
type Engine struct {
	registry *registry.Registry
	ledger   ledger.Ledger
	sink     event.Sink
	logger   *zap.Logger

	// Serializes identifier claims so a create cannot race another create
	// of the same pair between the existence check and registration.
	createMu sync.Mutex
}

func New(reg *registry.Registry, led ledger.Ledger, sink event.Sink, logger *zap.Logger) *Engine {
	return &Engine{
		registry: reg,
		ledger:   led,
		sink:     sink,
		logger:   logger,
	}
}

// Registry exposes the pool registry for read-only callers.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// CreatePool bootstraps a pool for an asset pair, debits the creator on
// both assets, and credits the first liquidity shares. The creator becomes
// the pool owner. Returns the shares minted, net of the permanently
// withheld amm.MinLiquidity.
func (e *Engine) CreatePool(actor common.Address, assetA, assetB string, amountA, amountB uint64, feeBps uint32) (uint64, error) {
	if actor == (common.Address{}) {
		return 0, fmt.Errorf("pool creator: %w", ErrInvalidAddress)
	}
	if assetA == assetB {
		return 0, fmt.Errorf("pair %s/%s: %w", assetA, assetB, ErrInvalidPair)
	}
	if assetA > assetB {
		assetA, assetB = assetB, assetA
		amountA, amountB = amountB, amountA
	}
	if amountA < MinInitialReserve || amountB < MinInitialReserve {
		return 0, fmt.Errorf("initial deposit below %d units per side: %w", MinInitialReserve, amm.ErrInsufficientLiquidityMinted)
	}
	if feeBps > amm.FeeDenomBps {
		return 0, fmt.Errorf("fee %d: %w", feeBps, amm.ErrInvalidFee)
	}

	e.createMu.Lock()
	defer e.createMu.Unlock()

	id := model.PairID(assetA, assetB)
	if e.registry.Exists(id) {
		return 0, fmt.Errorf("pool %s: %w", id, registry.ErrPoolAlreadyExists)
	}

	minted, err := amm.MintAmount(amountA, amountB, 0, 0, 0)
	if err != nil {
		return 0, err
	}
	supply, err := amm.CheckedAdd(minted, amm.MinLiquidity)
	if err != nil {
		return 0, err
	}

	pool := model.NewPool(assetA, assetB, feeBps, actor)
	if err := e.checkFunds(actor, assetA, amountA); err != nil {
		return 0, err
	}
	if err := e.checkFunds(actor, assetB, amountB); err != nil {
		return 0, err
	}
	if e.ledger.IsFrozen(actor, pool.ShareAsset()) {
		return 0, fmt.Errorf("share account %s: %w", actor.Hex(), ledger.ErrAccountFrozen)
	}

	if err := e.ledger.Debit(actor, assetA, amountA); err != nil {
		return 0, err
	}
	if err := e.ledger.Debit(actor, assetB, amountB); err != nil {
		e.refund(actor, assetA, amountA)
		return 0, err
	}
	if err := e.ledger.Credit(actor, pool.ShareAsset(), minted); err != nil {
		e.refund(actor, assetA, amountA)
		e.refund(actor, assetB, amountB)
		return 0, err
	}

	pool.ReserveA = amountA
	pool.ReserveB = amountB
	// Supply includes the withheld minimum so the share price can never
	// be computed against a near-zero denominator.
	pool.ShareSupply = supply
	pool.Seq = 1

	if err := e.registry.Register(pool); err != nil {
		return 0, err
	}

	e.emit(model.PoolEvent{
		PoolID:       pool.ID,
		Seq:          pool.Seq,
		Op:           model.OpPoolCreated,
		Actor:        actor.Hex(),
		AmountA:      amountA,
		AmountB:      amountB,
		SharesMinted: minted,
		FeeBps:       feeBps,
		ReserveA:     pool.ReserveA,
		ReserveB:     pool.ReserveB,
		ShareSupply:  pool.ShareSupply,
	})
	return minted, nil
}

// AddLiquidity deposits both assets and mints shares proportional to the
// current reserve ratio. Fails with ErrSlippageExceeded when the mint comes
// out under minShares.
func (e *Engine) AddLiquidity(actor common.Address, poolID string, amountA, amountB, minShares uint64) (uint64, error) {
	var (
		minted uint64
		ev     model.PoolEvent
	)
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Paused {
			return fmt.Errorf("pool %s: %w", p.ID, ErrPoolPaused)
		}
		if amountA == 0 || amountB == 0 {
			return amm.ErrInsufficientInputAmount
		}

		shares, err := amm.MintAmount(amountA, amountB, p.ReserveA, p.ReserveB, p.ShareSupply)
		if err != nil {
			return err
		}
		if shares < minShares {
			return fmt.Errorf("minted %d < minimum %d: %w", shares, minShares, ErrSlippageExceeded)
		}

		newReserveA, err := amm.CheckedAdd(p.ReserveA, amountA)
		if err != nil {
			return err
		}
		newReserveB, err := amm.CheckedAdd(p.ReserveB, amountB)
		if err != nil {
			return err
		}
		newSupply, err := amm.CheckedAdd(p.ShareSupply, shares)
		if err != nil {
			return err
		}

		if err := e.checkFunds(actor, p.AssetA, amountA); err != nil {
			return err
		}
		if err := e.checkFunds(actor, p.AssetB, amountB); err != nil {
			return err
		}
		if e.ledger.IsFrozen(actor, p.ShareAsset()) {
			return fmt.Errorf("share account %s: %w", actor.Hex(), ledger.ErrAccountFrozen)
		}

		if err := e.ledger.Debit(actor, p.AssetA, amountA); err != nil {
			return err
		}
		if err := e.ledger.Debit(actor, p.AssetB, amountB); err != nil {
			e.refund(actor, p.AssetA, amountA)
			return err
		}
		if err := e.ledger.Credit(actor, p.ShareAsset(), shares); err != nil {
			e.refund(actor, p.AssetA, amountA)
			e.refund(actor, p.AssetB, amountB)
			return err
		}

		p.ReserveA = newReserveA
		p.ReserveB = newReserveB
		p.ShareSupply = newSupply
		p.Seq++
		minted = shares

		ev = model.PoolEvent{
			PoolID:       p.ID,
			Seq:          p.Seq,
			Op:           model.OpLiquidityAdded,
			Actor:        actor.Hex(),
			AmountA:      amountA,
			AmountB:      amountB,
			SharesMinted: shares,
			ReserveA:     p.ReserveA,
			ReserveB:     p.ReserveB,
			ShareSupply:  p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.emit(ev)
	return minted, nil
}

// RemoveLiquidity burns shares and pays out the proportional slice of both
// reserves, rounding down. Fails with ErrSlippageExceeded when either
// payout is under its minimum.
func (e *Engine) RemoveLiquidity(actor common.Address, poolID string, shares, minA, minB uint64) (uint64, uint64, error) {
	var (
		outA, outB uint64
		ev         model.PoolEvent
	)
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Paused {
			return fmt.Errorf("pool %s: %w", p.ID, ErrPoolPaused)
		}
		if shares == 0 {
			return amm.ErrInsufficientInputAmount
		}

		amountA, amountB, err := amm.WithdrawAmounts(shares, p.ReserveA, p.ReserveB, p.ShareSupply)
		if err != nil {
			return err
		}
		if amountA < minA || amountB < minB {
			return fmt.Errorf("payout (%d,%d) under minimum (%d,%d): %w", amountA, amountB, minA, minB, ErrSlippageExceeded)
		}

		newReserveA, err := amm.CheckedSub(p.ReserveA, amountA)
		if err != nil {
			return err
		}
		newReserveB, err := amm.CheckedSub(p.ReserveB, amountB)
		if err != nil {
			return err
		}
		newSupply, err := amm.CheckedSub(p.ShareSupply, shares)
		if err != nil {
			return err
		}

		if err := e.checkFunds(actor, p.ShareAsset(), shares); err != nil {
			return err
		}
		if e.ledger.IsFrozen(actor, p.AssetA) {
			return fmt.Errorf("account %s asset %s: %w", actor.Hex(), p.AssetA, ledger.ErrAccountFrozen)
		}
		if e.ledger.IsFrozen(actor, p.AssetB) {
			return fmt.Errorf("account %s asset %s: %w", actor.Hex(), p.AssetB, ledger.ErrAccountFrozen)
		}

		if err := e.ledger.Debit(actor, p.ShareAsset(), shares); err != nil {
			return err
		}
		if err := e.ledger.Credit(actor, p.AssetA, amountA); err != nil {
			e.refund(actor, p.ShareAsset(), shares)
			return err
		}
		if err := e.ledger.Credit(actor, p.AssetB, amountB); err != nil {
			e.reclaim(actor, p.AssetA, amountA)
			e.refund(actor, p.ShareAsset(), shares)
			return err
		}

		p.ReserveA = newReserveA
		p.ReserveB = newReserveB
		p.ShareSupply = newSupply
		p.Seq++
		outA, outB = amountA, amountB

		ev = model.PoolEvent{
			PoolID:       p.ID,
			Seq:          p.Seq,
			Op:           model.OpLiquidityRemoved,
			Actor:        actor.Hex(),
			AmountA:      amountA,
			AmountB:      amountB,
			SharesBurned: shares,
			ReserveA:     p.ReserveA,
			ReserveB:     p.ReserveB,
			ShareSupply:  p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	e.emit(ev)
	return outA, outB, nil
}

// Swap trades amountIn of the side's input asset for the output asset at
// the fee-adjusted constant-product price. The constant-product invariant
// is re-validated on the post-trade reserves before anything commits.
func (e *Engine) Swap(actor common.Address, poolID string, side model.Side, amountIn, minAmountOut uint64) (uint64, error) {
	var (
		amountOut uint64
		ev        model.PoolEvent
	)
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Paused {
			return fmt.Errorf("pool %s: %w", p.ID, ErrPoolPaused)
		}
		if amountIn == 0 {
			return amm.ErrInsufficientInputAmount
		}

		reserveIn, reserveOut := p.Reserves(side)
		out, err := amm.SwapOutputWithFee(reserveIn, reserveOut, amountIn, p.FeeBps)
		if err != nil {
			return err
		}
		if out < minAmountOut {
			return fmt.Errorf("output %d < minimum %d: %w", out, minAmountOut, ErrSlippageExceeded)
		}
		if out == 0 || out >= reserveOut {
			return fmt.Errorf("output %d against reserve %d: %w", out, reserveOut, ErrInsufficientLiquidity)
		}

		newReserveIn, err := amm.CheckedAdd(reserveIn, amountIn)
		if err != nil {
			return err
		}
		newReserveOut := reserveOut - out
		if !amm.ProductNonDecreasing(reserveIn, reserveOut, newReserveIn, newReserveOut) {
			return fmt.Errorf("pool %s: %w", p.ID, ErrInvariantBroken)
		}

		assetIn, assetOut := p.AssetA, p.AssetB
		if side == model.SideBToA {
			assetIn, assetOut = p.AssetB, p.AssetA
		}
		if err := e.checkFunds(actor, assetIn, amountIn); err != nil {
			return err
		}
		if e.ledger.IsFrozen(actor, assetOut) {
			return fmt.Errorf("account %s asset %s: %w", actor.Hex(), assetOut, ledger.ErrAccountFrozen)
		}

		if err := e.ledger.Debit(actor, assetIn, amountIn); err != nil {
			return err
		}
		if err := e.ledger.Credit(actor, assetOut, out); err != nil {
			e.refund(actor, assetIn, amountIn)
			return err
		}

		if side == model.SideAToB {
			p.ReserveA = newReserveIn
			p.ReserveB = newReserveOut
		} else {
			p.ReserveB = newReserveIn
			p.ReserveA = newReserveOut
		}
		p.CumulativeVolume.Add(p.CumulativeVolume, uint256.NewInt(amountIn))
		fee := uint256.NewInt(amountIn)
		fee.Mul(fee, uint256.NewInt(uint64(p.FeeBps)))
		fee.Div(fee, uint256.NewInt(amm.FeeDenomBps))
		p.CumulativeFees.Add(p.CumulativeFees, fee)
		p.Seq++
		amountOut = out

		ev = model.PoolEvent{
			PoolID:      p.ID,
			Seq:         p.Seq,
			Op:          model.OpSwap,
			Actor:       actor.Hex(),
			AmountIn:    amountIn,
			AmountOut:   out,
			Side:        side.String(),
			ReserveA:    p.ReserveA,
			ReserveB:    p.ReserveB,
			ShareSupply: p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.emit(ev)
	return amountOut, nil
}

// refund reverses a debit already taken when a later ledger call aborts
// the operation. The ledger is shared across pools, so a balance or freeze
// state can change between the pre-check and the debit sequence; an aborted
// operation must hand back everything it took. A failed reversal leaves a
// real discrepancy and is logged at Error.
func (e *Engine) refund(holder common.Address, asset string, amount uint64) {
	if err := e.ledger.Credit(holder, asset, amount); err != nil {
		e.logger.Error("refund for aborted operation failed",
			zap.String("holder", holder.Hex()),
			zap.String("asset", asset),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
	}
}

// reclaim reverses a credit already paid when a later ledger call aborts
// the operation.
func (e *Engine) reclaim(holder common.Address, asset string, amount uint64) {
	if err := e.ledger.Debit(holder, asset, amount); err != nil {
		e.logger.Error("reclaim for aborted operation failed",
			zap.String("holder", holder.Hex()),
			zap.String("asset", asset),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
	}
}

// checkFunds validates the freeze flag and balance for one account before
// any mutation happens.
func (e *Engine) checkFunds(holder common.Address, asset string, amount uint64) error {
	if e.ledger.IsFrozen(holder, asset) {
		return fmt.Errorf("account %s asset %s: %w", holder.Hex(), asset, ledger.ErrAccountFrozen)
	}
	if balance := e.ledger.BalanceOf(holder, asset); balance < amount {
		return fmt.Errorf("need %d of %s, have %d: %w", amount, asset, balance, ledger.ErrInsufficientBalance)
	}
	return nil
}

// emit publishes the event for a committed operation. Publishes run
// outside the pool lock, so two commits on one pool may reach a sink out
// of order; ev.Seq carries the commit order. Sink failures are logged and
// swallowed: the operation already committed.
func (e *Engine) emit(ev model.PoolEvent) {
	ev.Timestamp = time.Now().Unix()
	if err := e.sink.Publish(ev); err != nil {
		e.logger.Warn("event sink publish failed",
			zap.String("pool", ev.PoolID),
			zap.String("op", ev.Op),
			zap.Error(err),
		)
	}
}
