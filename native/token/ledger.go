// Package token implements the fungible credit currency funding bidding
// offers: balances, owner-to-spender allowances and allowance-backed pulls.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

var (
	// ErrInsufficientBalance is returned when the owner balance does not
	// cover the requested movement.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance is returned when the spender's standing
	// allowance does not cover the requested pull.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// Ledger tracks balances and allowances for one credit currency.
type Ledger struct {
	mu         sync.RWMutex
	name       string
	symbol     string
	balances   map[[20]byte]*big.Int
	allowances map[[20]byte]map[[20]byte]*big.Int
}

// NewLedger constructs an empty credit ledger.
func NewLedger(name, symbol string) *Ledger {
	return &Ledger{
		name:       name,
		symbol:     symbol,
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[[20]byte]map[[20]byte]*big.Int),
	}
}

// Name returns the currency name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the currency symbol.
func (l *Ledger) Symbol() string { return l.symbol }

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Mint credits freshly issued currency to the account.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	if to == ([20]byte{}) {
		return fmt.Errorf("token: mint to zero address")
	}
	amt := cloneAmount(amount)
	if amt.Sign() <= 0 {
		return fmt.Errorf("token: mint amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] = new(big.Int).Add(l.balance(to), amt)
	return nil
}

// BalanceOf returns the account's balance.
func (l *Ledger) BalanceOf(account [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAmount(l.balance(account))
}

// AllowanceOf returns how much the spender may still pull from the owner.
func (l *Ledger) AllowanceOf(owner, spender [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAmount(l.allowance(owner, spender))
}

// Approve sets the spender's allowance to the given amount.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	amt := cloneAmount(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("token: allowance must be non-negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowance(owner, spender, amt)
	return nil
}

// IncreaseAllowance raises the spender's allowance by the given delta.
func (l *Ledger) IncreaseAllowance(owner, spender [20]byte, delta *big.Int) error {
	amt := cloneAmount(delta)
	if amt.Sign() <= 0 {
		return fmt.Errorf("token: allowance increase must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowance(owner, spender, new(big.Int).Add(l.allowance(owner, spender), amt))
	return nil
}

// Transfer moves currency between accounts without touching allowances.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	amt := cloneAmount(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance(from).Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[from] = new(big.Int).Sub(l.balance(from), amt)
	l.balances[to] = new(big.Int).Add(l.balance(to), amt)
	return nil
}

// TransferFrom pulls currency from the owner to the recipient on the
// spender's authority, consuming allowance.
func (l *Ledger) TransferFrom(spender, owner, to [20]byte, amount *big.Int) error {
	amt := cloneAmount(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	allowance := l.allowance(owner, spender)
	if allowance.Cmp(amt) < 0 {
		return ErrInsufficientAllowance
	}
	if l.balance(owner).Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	l.setAllowance(owner, spender, new(big.Int).Sub(allowance, amt))
	l.balances[owner] = new(big.Int).Sub(l.balance(owner), amt)
	l.balances[to] = new(big.Int).Add(l.balance(to), amt)
	return nil
}

func (l *Ledger) balance(account [20]byte) *big.Int {
	if bal, ok := l.balances[account]; ok && bal != nil {
		return bal
	}
	return big.NewInt(0)
}

func (l *Ledger) allowance(owner, spender [20]byte) *big.Int {
	if grants, ok := l.allowances[owner]; ok {
		if amt, ok := grants[spender]; ok && amt != nil {
			return amt
		}
	}
	return big.NewInt(0)
}

func (l *Ledger) setAllowance(owner, spender [20]byte, amount *big.Int) {
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[[20]byte]*big.Int)
		l.allowances[owner] = grants
	}
	grants[spender] = amount
}

// Binding scopes the ledger to a fixed spender so it satisfies the
// marketplace's credit capability: TransferFrom pulls on the bound
// spender's authority.
type Binding struct {
	ledger  *Ledger
	spender [20]byte
}

// Bind returns a capability binding acting on behalf of the spender.
func (l *Ledger) Bind(spender [20]byte) *Binding {
	return &Binding{ledger: l, spender: spender}
}

// BalanceOf returns the account balance.
func (b *Binding) BalanceOf(account [20]byte) *big.Int {
	return b.ledger.BalanceOf(account)
}

// AllowanceOf returns the spender's remaining allowance from the owner.
func (b *Binding) AllowanceOf(owner, spender [20]byte) *big.Int {
	return b.ledger.AllowanceOf(owner, spender)
}

// TransferFrom pulls currency from the owner to the recipient on the bound
// spender's authority.
func (b *Binding) TransferFrom(owner, to [20]byte, amount *big.Int) error {
	return b.ledger.TransferFrom(b.spender, owner, to, amount)
}
