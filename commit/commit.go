// Package commit computes MiMC commitments over ledger snapshots. The
// commitment binds every balance, every allowance, and the total supply into
// a single 32-byte digest, using the same hash the proof circuits verify so
// a commitment computed here can serve as a circuit's public input.
package commit

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/token"
)

// Commitment is a MiMC digest of a ledger snapshot.
type Commitment [32]byte

// Hex returns the 0x-prefixed hex encoding of the commitment.
func (c Commitment) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

// Snapshot commits to a ledger snapshot. The digest covers, in fixed order:
// the balance table (accounts sorted by address), the allowance table
// (owners then spenders sorted by address), and the total supply. Two
// snapshots produce the same commitment iff their committed state is equal.
func Snapshot(s *token.Snapshot) Commitment {
	balanceRoot := foldBalances(s)
	allowanceRoot := foldAllowances(s)

	root := hashPair(balanceRoot, allowanceRoot)
	root = hashPair(root, amountElement(s.TotalSupply))

	b := root.Bytes()
	return Commitment(b)
}

// BalanceLeaf returns the commitment leaf for a single account, usable as a
// witness value when proving statements about that account's balance.
func BalanceLeaf(account token.Address, balance *uint256.Int) Commitment {
	leaf := hashPair(addressElement(account), amountElement(balance))
	b := leaf.Bytes()
	return Commitment(b)
}

func foldBalances(s *token.Snapshot) fr.Element {
	var root fr.Element
	for _, acct := range s.Holders() {
		leaf := hashPair(addressElement(acct), amountElement(s.Balances[acct]))
		root = hashPair(root, leaf)
	}
	return root
}

func foldAllowances(s *token.Snapshot) fr.Element {
	owners := make([]token.Address, 0, len(s.Allowances))
	for o := range s.Allowances {
		owners = append(owners, o)
	}
	sortAddrs(owners)

	var root fr.Element
	for _, owner := range owners {
		inner := s.Allowances[owner]
		spenders := make([]token.Address, 0, len(inner))
		for sp := range inner {
			spenders = append(spenders, sp)
		}
		sortAddrs(spenders)

		for _, spender := range spenders {
			key := hashPair(addressElement(owner), addressElement(spender))
			leaf := hashPair(key, amountElement(inner[spender]))
			root = hashPair(root, leaf)
		}
	}
	return root
}

// hashPair computes MiMC(a, b) over the BN254 scalar field.
func hashPair(a, b fr.Element) fr.Element {
	h := mimc.NewMiMC()
	ab := a.Bytes()
	bb := b.Bytes()
	// Inputs are reduced field elements, so Write cannot fail.
	h.Write(ab[:])
	h.Write(bb[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func addressElement(a token.Address) fr.Element {
	var e fr.Element
	// 20 bytes always fit below the field modulus.
	e.SetBytes(a.Bytes())
	return e
}

// amountElement maps a 256-bit amount into the scalar field. Values at or
// above the modulus reduce; the collision set is empty for any supply below
// 2^253, which covers every realistic token.
func amountElement(v *uint256.Int) fr.Element {
	var e fr.Element
	b := v.Bytes32()
	e.SetBytes(b[:])
	return e
}

func sortAddrs(addrs []token.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
}
