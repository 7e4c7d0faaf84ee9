// Package ledger defines the balance-keeping capability the pool engine
// depends on. The engine never stores per-holder balances itself; it only
// debits and credits through this interface.
package ledger

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountFrozen       = errors.New("account frozen")
)

// Ledger moves raw asset balances between holders. Implementations must be
// safe for concurrent use; calls are synchronous and non-blocking from the
// pool's perspective.
type Ledger interface {
	BalanceOf(holder common.Address, asset string) uint64
	IsFrozen(holder common.Address, asset string) bool
	Debit(holder common.Address, asset string, amount uint64) error
	Credit(holder common.Address, asset string, amount uint64) error
}
