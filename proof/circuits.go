// Package proof builds Groth16 proofs for the ledger's transition guards.
// A holder can prove "my balance covers this amount" without revealing the
// balance, binding the hidden value to the same MiMC leaf the commit package
// produces; a transfer proof additionally shows the post-balances conserve
// value. Circuit amounts are range-checked to 64 bits.
package proof

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/commit"
	"github.com/pflow-xyz/go-tokenledger/token"
)

// ErrAmountTooLarge is returned by assignment builders when a value exceeds
// the circuits' 64-bit range checks.
var ErrAmountTooLarge = errors.New("proof: amount exceeds 64-bit circuit range")

// mimcHash computes MiMC(left, right) inside a circuit. It matches the
// native hash used by the commit package.
func mimcHash(api frontend.API, left, right frontend.Variable) frontend.Variable {
	h, _ := mimc.NewMiMC(api)
	h.Write(left)
	h.Write(right)
	return h.Sum()
}

// BalanceGuardCircuit proves balances[account] >= amount for a hidden
// balance committed to by a public MiMC leaf.
type BalanceGuardCircuit struct {
	// Public inputs
	Leaf    frontend.Variable `gnark:",public"` // MiMC(account, balance)
	Account frontend.Variable `gnark:",public"`
	Amount  frontend.Variable `gnark:",public"`

	// Private witness
	Balance frontend.Variable
}

// Define implements frontend.Circuit.
func (c *BalanceGuardCircuit) Define(api frontend.API) error {
	// Guard: balance >= amount. The difference must fit in 64 bits, which
	// fails for a negative (wrapped) value.
	diff := api.Sub(c.Balance, c.Amount)
	api.ToBinary(diff, 64)

	// Bind the hidden balance to the public commitment leaf.
	leaf := mimcHash(api, c.Account, c.Balance)
	api.AssertIsEqual(leaf, c.Leaf)
	return nil
}

// TransferCircuit proves one balance movement: the sender covered the
// amount, both post-balances follow from the pre-balances, and the pair
// conserves value.
type TransferCircuit struct {
	// Public inputs
	Amount    frontend.Variable `gnark:",public"`
	FromAfter frontend.Variable `gnark:",public"`
	ToAfter   frontend.Variable `gnark:",public"`

	// Private witness
	FromBefore frontend.Variable
	ToBefore   frontend.Variable
}

// Define implements frontend.Circuit.
func (c *TransferCircuit) Define(api frontend.API) error {
	// Guard: fromBefore >= amount.
	diff := api.Sub(c.FromBefore, c.Amount)
	api.ToBinary(diff, 64)

	// Post-balances follow from the pre-balances.
	api.AssertIsEqual(c.FromAfter, api.Sub(c.FromBefore, c.Amount))
	api.AssertIsEqual(c.ToAfter, api.Add(c.ToBefore, c.Amount))

	// Conservation: the pair's total is unchanged.
	api.AssertIsEqual(
		api.Add(c.FromBefore, c.ToBefore),
		api.Add(c.FromAfter, c.ToAfter),
	)
	return nil
}

// BalanceGuardAssignment builds a witness proving balance >= amount for an
// account. The public leaf is computed with the commit package so verifiers
// can check it against a published commitment.
func BalanceGuardAssignment(account token.Address, balance, amount *uint256.Int) (*BalanceGuardCircuit, error) {
	if !balance.IsUint64() || !amount.IsUint64() {
		return nil, ErrAmountTooLarge
	}
	leaf := commit.BalanceLeaf(account, balance)
	return &BalanceGuardCircuit{
		Leaf:    new(big.Int).SetBytes(leaf[:]),
		Account: new(big.Int).SetBytes(account.Bytes()),
		Amount:  amount.ToBig(),
		Balance: balance.ToBig(),
	}, nil
}

// TransferAssignment builds a witness for a transfer of amount between two
// balances. It fails with token.ErrInsufficientBalance when the sender
// cannot cover the amount, mirroring the ledger guard.
func TransferAssignment(fromBefore, toBefore, amount *uint256.Int) (*TransferCircuit, error) {
	if !fromBefore.IsUint64() || !toBefore.IsUint64() || !amount.IsUint64() {
		return nil, ErrAmountTooLarge
	}
	if fromBefore.Lt(amount) {
		return nil, token.ErrInsufficientBalance
	}
	fromAfter := new(uint256.Int).Sub(fromBefore, amount)
	toAfter := new(uint256.Int).Add(toBefore, amount)
	return &TransferCircuit{
		Amount:     amount.ToBig(),
		FromAfter:  fromAfter.ToBig(),
		ToAfter:    toAfter.ToBig(),
		FromBefore: fromBefore.ToBig(),
		ToBefore:   toBefore.ToBig(),
	}, nil
}
