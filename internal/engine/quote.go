package engine

import (
	"ammcore/internal/amm"
	"ammcore/internal/model"
)

// Quote is a priced swap preview: the fee-adjusted output and how far the
// trade would move the spot price.
type Quote struct {
	AmountOut      uint64 `json:"amount_out"`
	PriceImpactBps uint64 `json:"price_impact_bps"`
}

// GetPool returns a consistent snapshot of one pool.
func (e *Engine) GetPool(poolID string) (model.PoolSnapshot, error) {
	var snap model.PoolSnapshot
	err := e.registry.View(poolID, func(p *model.Pool) error {
		snap = p.Snapshot()
		return nil
	})
	return snap, err
}

// ListPools returns snapshots of every pool in identifier order.
func (e *Engine) ListPools() []model.PoolSnapshot {
	ids := e.registry.IDs()
	snaps := make([]model.PoolSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := e.GetPool(id)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// QuoteSwap prices a swap without executing it. Quotes read a consistent
// pool state but take no exclusive lock.
func (e *Engine) QuoteSwap(poolID string, side model.Side, amountIn uint64) (Quote, error) {
	var q Quote
	err := e.registry.View(poolID, func(p *model.Pool) error {
		reserveIn, reserveOut := p.Reserves(side)
		out, err := amm.SwapOutputWithFee(reserveIn, reserveOut, amountIn, p.FeeBps)
		if err != nil {
			return err
		}
		impact, err := amm.PriceImpactBps(reserveIn, reserveOut, amountIn)
		if err != nil {
			return err
		}
		q = Quote{AmountOut: out, PriceImpactBps: impact}
		return nil
	})
	return q, err
}

// QuoteDeposit clamps a desired deposit to the pool ratio and previews the
// share mint for the clamped amounts.
func (e *Engine) QuoteDeposit(poolID string, desiredA, desiredB uint64) (optA, optB, shares uint64, err error) {
	err = e.registry.View(poolID, func(p *model.Pool) error {
		a, b, err := amm.OptimalDeposit(desiredA, desiredB, p.ReserveA, p.ReserveB)
		if err != nil {
			return err
		}
		minted, err := amm.MintAmount(a, b, p.ReserveA, p.ReserveB, p.ShareSupply)
		if err != nil {
			return err
		}
		optA, optB, shares = a, b, minted
		return nil
	})
	return optA, optB, shares, err
}

// QuoteWithdraw previews the payout for burning shares.
func (e *Engine) QuoteWithdraw(poolID string, shares uint64) (amountA, amountB uint64, err error) {
	err = e.registry.View(poolID, func(p *model.Pool) error {
		a, b, err := amm.WithdrawAmounts(shares, p.ReserveA, p.ReserveB, p.ShareSupply)
		if err != nil {
			return err
		}
		amountA, amountB = a, b
		return nil
	})
	return amountA, amountB, err
}
