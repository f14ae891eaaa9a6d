package token

import (
	"errors"
	"math/big"
	"testing"
)

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestMintAndTransfer(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)

	if err := l.Mint(alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("alice balance = %s, want 70", got)
	}
	if got := l.BalanceOf(bob); got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("bob balance = %s, want 30", got)
	}
	if err := l.Transfer(alice, bob, big.NewInt(100)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestAllowances(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	owner := newTestAddress(0x01)
	spender := newTestAddress(0xEE)
	if err := l.Mint(owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := l.Approve(owner, spender, big.NewInt(40)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := l.AllowanceOf(owner, spender); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("allowance = %s, want 40", got)
	}
	if err := l.IncreaseAllowance(owner, spender, big.NewInt(10)); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if got := l.AllowanceOf(owner, spender); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("allowance = %s, want 50", got)
	}
	// Approve overwrites rather than accumulates.
	if err := l.Approve(owner, spender, big.NewInt(5)); err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if got := l.AllowanceOf(owner, spender); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("allowance = %s, want 5", got)
	}
}

func TestTransferFrom(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	owner := newTestAddress(0x01)
	spender := newTestAddress(0xEE)
	recipient := newTestAddress(0x02)
	if err := l.Mint(owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Approve(owner, spender, big.NewInt(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := l.TransferFrom(spender, owner, recipient, big.NewInt(70)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if err := l.TransferFrom(spender, owner, recipient, big.NewInt(60)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := l.BalanceOf(recipient); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("recipient balance = %s, want 60", got)
	}
	// The allowance is consumed by the pull.
	if got := l.AllowanceOf(owner, spender); got.Sign() != 0 {
		t.Fatalf("allowance = %s, want 0", got)
	}
	if err := l.TransferFrom(spender, owner, recipient, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance after exhaustion, got %v", err)
	}
}

func TestTransferFromChecksBalance(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	owner := newTestAddress(0x01)
	spender := newTestAddress(0xEE)
	if err := l.Mint(owner, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// Allowance can exceed the balance; the pull still fails on funds.
	if err := l.Approve(owner, spender, big.NewInt(100)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.TransferFrom(spender, owner, newTestAddress(0x02), big.NewInt(50)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestBinding(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	owner := newTestAddress(0x01)
	operator := newTestAddress(0xEE)
	recipient := newTestAddress(0x02)
	if err := l.Mint(owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Approve(owner, operator, big.NewInt(25)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	b := l.Bind(operator)
	if got := b.BalanceOf(owner); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("bound balance = %s, want 100", got)
	}
	if got := b.AllowanceOf(owner, operator); got.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("bound allowance = %s, want 25", got)
	}
	if err := b.TransferFrom(owner, recipient, big.NewInt(25)); err != nil {
		t.Fatalf("bound transferFrom: %v", err)
	}
	if got := l.BalanceOf(recipient); got.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("recipient balance = %s, want 25", got)
	}
}

func TestMintValidation(t *testing.T) {
	l := NewLedger("Market Credit", "MCR")
	if err := l.Mint([20]byte{}, big.NewInt(1)); err == nil {
		t.Fatal("expected error for zero recipient")
	}
	if err := l.Mint(newTestAddress(0x01), big.NewInt(-1)); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
