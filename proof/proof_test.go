package proof

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/token"
)

var account = token.MustParseAddress("0x1111111111111111111111111111111111111111")

func TestBalanceGuardCircuit_Compiles(t *testing.T) {
	var circuit BalanceGuardCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		t.Fatalf("circuit compilation failed: %v", err)
	}
	t.Logf("balance guard circuit: %d constraints", cs.GetNbConstraints())
}

func TestTransferCircuit_Compiles(t *testing.T) {
	var circuit TransferCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		t.Fatalf("circuit compilation failed: %v", err)
	}
	t.Logf("transfer circuit: %d constraints", cs.GetNbConstraints())
}

func TestBalanceGuardProof(t *testing.T) {
	sys := NewSystem()
	if err := sys.Register("balance_guard", &BalanceGuardCircuit{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	assignment, err := BalanceGuardAssignment(account, uint256.NewInt(1000), uint256.NewInt(100))
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}

	prf, public, err := sys.Prove("balance_guard", assignment)
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}
	if err := sys.Verify("balance_guard", prf, public); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestBalanceGuardProof_InsufficientBalanceFails(t *testing.T) {
	sys := NewSystem()
	if err := sys.Register("balance_guard", &BalanceGuardCircuit{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// balance < amount: the range check on the difference must make the
	// proof unsatisfiable.
	assignment, err := BalanceGuardAssignment(account, uint256.NewInt(50), uint256.NewInt(100))
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}

	if _, _, err := sys.Prove("balance_guard", assignment); err == nil {
		t.Error("expected proof to fail for insufficient balance")
	}
}

func TestTransferProof(t *testing.T) {
	sys := NewSystem()
	if err := sys.Register("transfer", &TransferCircuit{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	assignment, err := TransferAssignment(uint256.NewInt(1000), uint256.NewInt(7), uint256.NewInt(100))
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}

	prf, public, err := sys.Prove("transfer", assignment)
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}
	if err := sys.Verify("transfer", prf, public); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestTransferAssignment_Guards(t *testing.T) {
	if _, err := TransferAssignment(uint256.NewInt(10), uint256.NewInt(0), uint256.NewInt(11)); !errors.Is(err, token.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 70)
	if _, err := TransferAssignment(huge, uint256.NewInt(0), uint256.NewInt(1)); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestSystem_UnknownCircuit(t *testing.T) {
	sys := NewSystem()
	if _, _, err := sys.Prove("nope", &TransferCircuit{}); err == nil {
		t.Error("expected error for unregistered circuit")
	}
}
