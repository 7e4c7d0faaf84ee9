package ledger

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var holder = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestMemoryDebitCredit(t *testing.T) {
	m := NewMemory()
	m.Mint(holder, "atom", 1000)

	if got := m.BalanceOf(holder, "atom"); got != 1000 {
		t.Fatalf("balance = %d, want 1000", got)
	}

	if err := m.Debit(holder, "atom", 400); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if err := m.Credit(holder, "atom", 100); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if got := m.BalanceOf(holder, "atom"); got != 700 {
		t.Fatalf("balance = %d, want 700", got)
	}
}

func TestMemoryInsufficientBalance(t *testing.T) {
	m := NewMemory()
	m.Mint(holder, "atom", 10)

	err := m.Debit(holder, "atom", 11)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := m.BalanceOf(holder, "atom"); got != 10 {
		t.Fatalf("failed debit mutated balance: %d", got)
	}
}

func TestMemoryFrozenAccount(t *testing.T) {
	m := NewMemory()
	m.Mint(holder, "atom", 100)
	m.SetFrozen(holder, "atom", true)

	if !m.IsFrozen(holder, "atom") {
		t.Fatalf("account should be frozen")
	}
	if err := m.Debit(holder, "atom", 1); !errors.Is(err, ErrAccountFrozen) {
		t.Fatalf("debit on frozen: got %v", err)
	}
	if err := m.Credit(holder, "atom", 1); !errors.Is(err, ErrAccountFrozen) {
		t.Fatalf("credit on frozen: got %v", err)
	}

	m.SetFrozen(holder, "atom", false)
	if err := m.Debit(holder, "atom", 1); err != nil {
		t.Fatalf("debit after unfreeze: %v", err)
	}
}
