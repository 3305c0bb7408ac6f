// Package token implements a fungible-token ledger: a table of account
// balances and spending allowances mutated by a fixed set of atomic
// operations (transfer, approve, transferFrom, mint, burn).
//
// All amounts are 256-bit unsigned integers; any operation that would
// overflow or underflow fails without touching state. The ledger performs no
// internal locking: callers are expected to serialize operations, which the
// eventsource repository does when the ledger is driven through a stream.
package token

import "github.com/holiman/uint256"

// Decimals is the fixed fractional precision of every ledger. Amounts are
// integers with 18 decimal digits folded in, matching the convention of the
// host platforms this ledger models.
const Decimals = 18

// Ledger holds all balance and allowance state for a single token.
// The zero value is not usable; create instances with New.
type Ledger struct {
	name     string
	symbol   string
	owner    Address
	supply   *uint256.Int
	balances map[Address]*uint256.Int

	// allowances[owner][spender] = remaining allowance.
	// Inner maps are created lazily; absent means zero.
	allowances map[Address]map[Address]*uint256.Int
}

// New constructs a ledger, minting initialSupply entirely to the deployer.
// The deployer becomes the ledger owner. A nil initialSupply is treated as
// zero. The returned events are the construction notifications: ownership
// assignment followed by the initial mint.
func New(name, symbol string, initialSupply *uint256.Int, deployer Address) (*Ledger, []*Event, error) {
	if deployer.IsZero() {
		return nil, nil, ErrInvalidOwner
	}
	if initialSupply == nil {
		initialSupply = uint256.NewInt(0)
	}

	l := &Ledger{
		name:       name,
		symbol:     symbol,
		owner:      deployer,
		supply:     initialSupply.Clone(),
		balances:   make(map[Address]*uint256.Int),
		allowances: make(map[Address]map[Address]*uint256.Int),
	}

	events := []*Event{newOwnershipTransferred(ZeroAddress, deployer)}
	if !initialSupply.IsZero() {
		l.balances[deployer] = initialSupply.Clone()
		events = append(events, newTransfer(ZeroAddress, deployer, initialSupply))
	}
	return l, events, nil
}

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// DecimalPlaces returns the fixed fractional precision.
func (l *Ledger) DecimalPlaces() uint8 { return Decimals }

// Owner returns the current ledger owner.
func (l *Ledger) Owner() Address { return l.owner }

// TotalSupply returns the total number of token units in existence.
func (l *Ledger) TotalSupply() *uint256.Int { return l.supply.Clone() }

// BalanceOf returns the balance of an account. Accounts that never received
// tokens have a zero balance.
func (l *Ledger) BalanceOf(account Address) *uint256.Int {
	if b, ok := l.balances[account]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Allowance returns the amount a spender may still move on behalf of an
// owner. Absent entries are zero.
func (l *Ledger) Allowance(owner, spender Address) *uint256.Int {
	if inner, ok := l.allowances[owner]; ok {
		if a, ok := inner[spender]; ok {
			return a.Clone()
		}
	}
	return uint256.NewInt(0)
}

// Transfer moves amount from sender to to. Allowances are unaffected.
func (l *Ledger) Transfer(sender, to Address, amount *uint256.Int) (*Event, error) {
	if to.IsZero() {
		return nil, ErrInvalidRecipient
	}
	from := l.balance(sender)
	if from.Lt(amount) {
		return nil, ErrInsufficientBalance
	}
	if sender == to {
		// Self-transfer is a no-op once the balance check passed. The debit
		// funds the credit, so no overflow is possible.
		return newTransfer(sender, to, amount), nil
	}

	// Compute both post-balances before writing anything so a failed check
	// leaves the ledger untouched.
	newFrom := new(uint256.Int).Sub(from, amount)
	newTo, overflow := new(uint256.Int).AddOverflow(l.balance(to), amount)
	if overflow {
		return nil, ErrArithmeticOverflow
	}

	l.setBalance(sender, newFrom)
	l.setBalance(to, newTo)
	return newTransfer(sender, to, amount), nil
}

// Approve sets the spender's allowance to amount, replacing any prior value.
// Two consecutive approvals race with a concurrent TransferFrom (the classic
// approve front-running window); IncreaseAllowance and DecreaseAllowance are
// the mitigation.
func (l *Ledger) Approve(owner, spender Address, amount *uint256.Int) (*Event, error) {
	if spender.IsZero() {
		return nil, ErrInvalidSpender
	}
	l.setAllowance(owner, spender, amount.Clone())
	return newApproval(owner, spender, amount), nil
}

// IncreaseAllowance raises the spender's allowance by addedValue.
func (l *Ledger) IncreaseAllowance(owner, spender Address, addedValue *uint256.Int) (*Event, error) {
	if spender.IsZero() {
		return nil, ErrInvalidSpender
	}
	next, overflow := new(uint256.Int).AddOverflow(l.allowanceOf(owner, spender), addedValue)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	l.setAllowance(owner, spender, next)
	return newApproval(owner, spender, next), nil
}

// DecreaseAllowance lowers the spender's allowance by subtractedValue.
func (l *Ledger) DecreaseAllowance(owner, spender Address, subtractedValue *uint256.Int) (*Event, error) {
	if spender.IsZero() {
		return nil, ErrInvalidSpender
	}
	current := l.allowanceOf(owner, spender)
	if current.Lt(subtractedValue) {
		return nil, ErrAllowanceUnderflow
	}
	next := new(uint256.Int).Sub(current, subtractedValue)
	l.setAllowance(owner, spender, next)
	return newApproval(owner, spender, next), nil
}

// TransferFrom moves amount from from to to on behalf of caller, consuming
// the caller's allowance. The allowance is always decremented; there is no
// sentinel "unlimited" value.
func (l *Ledger) TransferFrom(caller, from, to Address, amount *uint256.Int) (*Event, error) {
	allowance := l.allowanceOf(from, caller)
	if allowance.Lt(amount) {
		return nil, ErrInsufficientAllowance
	}
	balance := l.balance(from)
	if balance.Lt(amount) {
		return nil, ErrInsufficientBalance
	}
	if to.IsZero() {
		return nil, ErrInvalidRecipient
	}

	newAllowance := new(uint256.Int).Sub(allowance, amount)
	if from == to {
		// The balances cancel out, but the allowance is still consumed.
		l.setAllowance(from, caller, newAllowance)
		return newTransfer(from, to, amount), nil
	}

	newTo, overflow := new(uint256.Int).AddOverflow(l.balance(to), amount)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	newFrom := new(uint256.Int).Sub(balance, amount)

	l.setAllowance(from, caller, newAllowance)
	l.setBalance(from, newFrom)
	l.setBalance(to, newTo)
	return newTransfer(from, to, amount), nil
}

// Mint creates amount new token units for to, growing the total supply.
// Restricted to the ledger owner.
func (l *Ledger) Mint(caller, to Address, amount *uint256.Int) (*Event, error) {
	if caller != l.owner {
		return nil, ErrUnauthorized
	}
	if to.IsZero() {
		return nil, ErrInvalidRecipient
	}

	// Total supply bounds every balance, so checking the supply addition
	// covers the balance addition as well.
	newSupply, overflow := new(uint256.Int).AddOverflow(l.supply, amount)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	newTo := new(uint256.Int).Add(l.balance(to), amount)

	l.supply = newSupply
	l.setBalance(to, newTo)
	return newTransfer(ZeroAddress, to, amount), nil
}

// Burn destroys amount token units held by caller, shrinking total supply.
func (l *Ledger) Burn(caller Address, amount *uint256.Int) (*Event, error) {
	balance := l.balance(caller)
	if balance.Lt(amount) {
		return nil, ErrInsufficientBalance
	}

	l.supply = new(uint256.Int).Sub(l.supply, amount)
	l.setBalance(caller, new(uint256.Int).Sub(balance, amount))
	return newTransfer(caller, ZeroAddress, amount), nil
}

// TransferOwnership hands the ledger to newOwner. Restricted to the current
// owner.
func (l *Ledger) TransferOwnership(caller, newOwner Address) (*Event, error) {
	if caller != l.owner {
		return nil, ErrUnauthorized
	}
	if newOwner.IsZero() {
		return nil, ErrInvalidOwner
	}
	previous := l.owner
	l.owner = newOwner
	return newOwnershipTransferred(previous, newOwner), nil
}

// balance returns the stored balance without copying. Callers must not
// mutate the result.
func (l *Ledger) balance(account Address) *uint256.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (l *Ledger) setBalance(account Address, value *uint256.Int) {
	if value.IsZero() {
		delete(l.balances, account)
		return
	}
	l.balances[account] = value
}

func (l *Ledger) allowanceOf(owner, spender Address) *uint256.Int {
	if inner, ok := l.allowances[owner]; ok {
		if a, ok := inner[spender]; ok {
			return a
		}
	}
	return uint256.NewInt(0)
}

func (l *Ledger) setAllowance(owner, spender Address, value *uint256.Int) {
	inner, ok := l.allowances[owner]
	if !ok {
		if value.IsZero() {
			return
		}
		inner = make(map[Address]*uint256.Int)
		l.allowances[owner] = inner
	}
	if value.IsZero() {
		delete(inner, spender)
		if len(inner) == 0 {
			delete(l.allowances, owner)
		}
		return
	}
	inner[spender] = value
}
