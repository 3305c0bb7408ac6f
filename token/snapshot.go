package token

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
)

// Snapshot is a deep copy of a ledger's state at a point in time. It is safe
// to hold across later ledger mutations, and is the input to state
// commitments and invariant checks.
type Snapshot struct {
	Name        string
	Symbol      string
	Owner       Address
	TotalSupply *uint256.Int
	Balances    map[Address]*uint256.Int
	Allowances  map[Address]map[Address]*uint256.Int
}

// Snapshot captures the current ledger state.
func (l *Ledger) Snapshot() *Snapshot {
	s := &Snapshot{
		Name:        l.name,
		Symbol:      l.symbol,
		Owner:       l.owner,
		TotalSupply: l.supply.Clone(),
		Balances:    make(map[Address]*uint256.Int, len(l.balances)),
		Allowances:  make(map[Address]map[Address]*uint256.Int, len(l.allowances)),
	}
	for a, b := range l.balances {
		s.Balances[a] = b.Clone()
	}
	for owner, inner := range l.allowances {
		m := make(map[Address]*uint256.Int, len(inner))
		for spender, v := range inner {
			m[spender] = v.Clone()
		}
		s.Allowances[owner] = m
	}
	return s
}

// Holders returns the accounts with a non-zero balance, sorted by address.
func (s *Snapshot) Holders() []Address {
	holders := make([]Address, 0, len(s.Balances))
	for a := range s.Balances {
		holders = append(holders, a)
	}
	sortAddresses(holders)
	return holders
}

// CheckConservation verifies that the balances sum exactly to the total
// supply. A non-nil error means the ledger reached an unreachable state.
func (s *Snapshot) CheckConservation() error {
	sum := uint256.NewInt(0)
	for a, b := range s.Balances {
		next, overflow := new(uint256.Int).AddOverflow(sum, b)
		if overflow {
			return fmt.Errorf("%w: balance sum exceeds 256 bits at %s", ErrArithmeticOverflow, a)
		}
		sum = next
	}
	if !sum.Eq(s.TotalSupply) {
		return fmt.Errorf("token: conservation violated: balances sum to %s, total supply is %s",
			sum.Dec(), s.TotalSupply.Dec())
	}
	return nil
}

func sortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool {
		for k := 0; k < AddressLength; k++ {
			if addrs[i][k] != addrs[j][k] {
				return addrs[i][k] < addrs[j][k]
			}
		}
		return false
	})
}
