package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"ammcore/internal/amm"
	"ammcore/internal/model"
)

// SetFee changes the pool's swap fee. Owner only; allowed while paused.
func (e *Engine) SetFee(actor common.Address, poolID string, newFeeBps uint32) error {
	var ev model.PoolEvent
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Owner != actor {
			return fmt.Errorf("caller %s: %w", actor.Hex(), ErrUnauthorized)
		}
		if newFeeBps > amm.FeeDenomBps {
			return fmt.Errorf("fee %d: %w", newFeeBps, amm.ErrInvalidFee)
		}

		p.FeeBps = newFeeBps
		p.Seq++

		ev = model.PoolEvent{
			PoolID:      p.ID,
			Seq:         p.Seq,
			Op:          model.OpFeeUpdated,
			Actor:       actor.Hex(),
			FeeBps:      newFeeBps,
			ReserveA:    p.ReserveA,
			ReserveB:    p.ReserveB,
			ShareSupply: p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.emit(ev)
	return nil
}

// SetPause toggles the emergency stop. Owner only. While paused, swaps and
// liquidity changes are rejected; admin operations still go through.
func (e *Engine) SetPause(actor common.Address, poolID string, paused bool) error {
	var ev model.PoolEvent
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Owner != actor {
			return fmt.Errorf("caller %s: %w", actor.Hex(), ErrUnauthorized)
		}

		p.Paused = paused
		p.Seq++

		ev = model.PoolEvent{
			PoolID:      p.ID,
			Seq:         p.Seq,
			Op:          model.OpPauseUpdated,
			Actor:       actor.Hex(),
			Paused:      paused,
			ReserveA:    p.ReserveA,
			ReserveB:    p.ReserveB,
			ShareSupply: p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.emit(ev)
	return nil
}

// TransferOwnership hands the pool's admin rights to another identity. The
// zero address is rejected.
func (e *Engine) TransferOwnership(actor common.Address, poolID string, newOwner common.Address) error {
	var ev model.PoolEvent
	err := e.registry.Update(poolID, func(p *model.Pool) error {
		if p.Owner != actor {
			return fmt.Errorf("caller %s: %w", actor.Hex(), ErrUnauthorized)
		}
		if newOwner == (common.Address{}) {
			return fmt.Errorf("new owner: %w", ErrInvalidAddress)
		}

		p.Owner = newOwner
		p.Seq++

		ev = model.PoolEvent{
			PoolID:      p.ID,
			Seq:         p.Seq,
			Op:          model.OpOwnershipTransferred,
			Actor:       actor.Hex(),
			NewOwner:    newOwner.Hex(),
			ReserveA:    p.ReserveA,
			ReserveB:    p.ReserveB,
			ShareSupply: p.ShareSupply,
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.emit(ev)
	return nil
}
