package ledger

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"ammcore/internal/amm"
)

type account struct {
	holder common.Address
	asset  string
}

// Memory is an in-process Ledger used by the serve binary and tests.
type Memory struct {
	mu       sync.RWMutex
	balances map[account]uint64
	frozen   map[account]bool
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[account]uint64),
		frozen:   make(map[account]bool),
	}
}

func (m *Memory) BalanceOf(holder common.Address, asset string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[account{holder, asset}]
}

func (m *Memory) IsFrozen(holder common.Address, asset string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frozen[account{holder, asset}]
}

func (m *Memory) Debit(holder common.Address, asset string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := account{holder, asset}
	if m.frozen[key] {
		return fmt.Errorf("debit %s %s: %w", holder.Hex(), asset, ErrAccountFrozen)
	}
	balance := m.balances[key]
	if balance < amount {
		return fmt.Errorf("debit %d of %s from %s (have %d): %w", amount, asset, holder.Hex(), balance, ErrInsufficientBalance)
	}
	m.balances[key] = balance - amount
	return nil
}

func (m *Memory) Credit(holder common.Address, asset string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := account{holder, asset}
	if m.frozen[key] {
		return fmt.Errorf("credit %s %s: %w", holder.Hex(), asset, ErrAccountFrozen)
	}
	sum, err := amm.CheckedAdd(m.balances[key], amount)
	if err != nil {
		return fmt.Errorf("credit %d of %s to %s: %w", amount, asset, holder.Hex(), err)
	}
	m.balances[key] = sum
	return nil
}

// Mint funds a holder directly, bypassing freeze checks. Test and bootstrap
// helper only.
func (m *Memory) Mint(holder common.Address, asset string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account{holder, asset}] += amount
}

// SetFrozen toggles the freeze flag on one holder/asset account.
func (m *Memory) SetFrozen(holder common.Address, asset string, frozen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen[account{holder, asset}] = frozen
}
