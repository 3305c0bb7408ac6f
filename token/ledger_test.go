package token

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

var (
	deployer  = MustParseAddress("0x1111111111111111111111111111111111111111")
	recipient = MustParseAddress("0x2222222222222222222222222222222222222222")
	spender   = MustParseAddress("0x3333333333333333333333333333333333333333")
)

func newTestLedger(t *testing.T, supply uint64) *Ledger {
	t.Helper()
	l, events, err := New("Test Token", "T", uint256.NewInt(supply), deployer)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if supply > 0 && len(events) != 2 {
		t.Fatalf("expected 2 construction events, got %d", len(events))
	}
	return l
}

// mustOK returns a helper that fails the test on an operation error and
// passes the event through.
func mustOK(t *testing.T) func(ev *Event, err error) *Event {
	return func(ev *Event, err error) *Event {
		t.Helper()
		if err != nil {
			t.Fatalf("operation failed: %v", err)
		}
		return ev
	}
}

func checkConservation(t *testing.T, l *Ledger) {
	t.Helper()
	if err := l.Snapshot().CheckConservation(); err != nil {
		t.Fatalf("conservation broken: %v", err)
	}
}

func maxUint256() *uint256.Int {
	return new(uint256.Int).Neg(uint256.NewInt(1)) // 2^256 - 1
}

func TestNew(t *testing.T) {
	l, events, err := New("T", "T", uint256.NewInt(1000), deployer)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("deployer balance = %s, want 1000", got.Dec())
	}
	if got := l.TotalSupply(); !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("total supply = %s, want 1000", got.Dec())
	}
	if l.Owner() != deployer {
		t.Errorf("owner = %s, want %s", l.Owner(), deployer)
	}
	if l.Name() != "T" || l.Symbol() != "T" {
		t.Errorf("metadata = (%s, %s), want (T, T)", l.Name(), l.Symbol())
	}
	if l.DecimalPlaces() != 18 {
		t.Errorf("decimals = %d, want 18", l.DecimalPlaces())
	}

	if events[0].Type != EventOwnershipTransferred || events[0].To != deployer {
		t.Errorf("first event = %s, want ownership to deployer", events[0])
	}
	if events[1].Type != EventTransfer || !events[1].From.IsZero() || events[1].To != deployer {
		t.Errorf("second event = %s, want mint transfer to deployer", events[1])
	}

	checkConservation(t, l)
}

func TestNew_ZeroDeployer(t *testing.T) {
	if _, _, err := New("T", "T", uint256.NewInt(1), ZeroAddress); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		ev := must(l.Transfer(deployer, recipient, uint256.NewInt(100)))

		if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(900)) {
			t.Errorf("deployer balance = %s, want 900", got.Dec())
		}
		if got := l.BalanceOf(recipient); !got.Eq(uint256.NewInt(100)) {
			t.Errorf("recipient balance = %s, want 100", got.Dec())
		}
		if ev.Type != EventTransfer || ev.From != deployer || ev.To != recipient {
			t.Errorf("unexpected event: %s", ev)
		}
		if !ev.Value.Eq(uint256.NewInt(100)) {
			t.Errorf("event value = %s, want 100", ev.Value.Dec())
		}
		checkConservation(t, l)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		_, err := l.Transfer(deployer, recipient, uint256.NewInt(1001))
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		// Both balances must be untouched after the failure.
		if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(1000)) {
			t.Errorf("deployer balance changed: %s", got.Dec())
		}
		if got := l.BalanceOf(recipient); !got.IsZero() {
			t.Errorf("recipient balance changed: %s", got.Dec())
		}
	})

	t.Run("ZeroRecipient", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.Transfer(deployer, ZeroAddress, uint256.NewInt(1)); !errors.Is(err, ErrInvalidRecipient) {
			t.Errorf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Transfer(deployer, deployer, uint256.NewInt(100)))
		if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(1000)) {
			t.Errorf("self-transfer changed balance: %s", got.Dec())
		}
		checkConservation(t, l)
	})

	t.Run("SelfTransferFullMaxBalance", func(t *testing.T) {
		// A self-transfer must not trip the credit overflow check even when
		// the account holds the entire 2^256-1 supply. The debit funds the
		// credit, so the sequence never overflows.
		max := maxUint256()
		l, _, err := New("T", "T", max, deployer)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		must := mustOK(t)
		must(l.Transfer(deployer, deployer, max))
		if got := l.BalanceOf(deployer); !got.Eq(max) {
			t.Errorf("self-transfer changed balance: %s", got.Dec())
		}
		checkConservation(t, l)
	})

	t.Run("FullBalance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Transfer(deployer, recipient, uint256.NewInt(1000)))
		if got := l.BalanceOf(deployer); !got.IsZero() {
			t.Errorf("deployer balance = %s, want 0", got.Dec())
		}
		checkConservation(t, l)
	})

	t.Run("NoAllowanceSideEffects", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(50)))
		must(l.Transfer(deployer, recipient, uint256.NewInt(100)))
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(50)) {
			t.Errorf("allowance changed by transfer: %s", got.Dec())
		}
	})
}

func TestApprove(t *testing.T) {
	t.Run("SetAndOverwrite", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(50)))
		// Approve is last-write-wins, not additive.
		must(l.Approve(deployer, spender, uint256.NewInt(7)))
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(7)) {
			t.Errorf("allowance = %s, want 7", got.Dec())
		}
	})

	t.Run("ZeroSpender", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.Approve(deployer, ZeroAddress, uint256.NewInt(1)); !errors.Is(err, ErrInvalidSpender) {
			t.Errorf("expected ErrInvalidSpender, got %v", err)
		}
	})

	t.Run("ExceedsBalanceAllowed", func(t *testing.T) {
		// Allowances may exceed the owner's balance; the balance check
		// happens at transferFrom time.
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(5000)))
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(5000)) {
			t.Errorf("allowance = %s, want 5000", got.Dec())
		}
	})
}

func TestIncreaseDecreaseAllowance(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(40)))
		must(l.IncreaseAllowance(deployer, spender, uint256.NewInt(25)))
		must(l.DecreaseAllowance(deployer, spender, uint256.NewInt(25)))
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(40)) {
			t.Errorf("allowance = %s, want 40 after round trip", got.Dec())
		}
	})

	t.Run("IncreaseFromZero", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		ev := must(l.IncreaseAllowance(deployer, spender, uint256.NewInt(30)))
		if !ev.Value.Eq(uint256.NewInt(30)) {
			t.Errorf("approval event value = %s, want 30", ev.Value.Dec())
		}
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(30)) {
			t.Errorf("allowance = %s, want 30", got.Dec())
		}
	})

	t.Run("Underflow", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(10)))
		_, err := l.DecreaseAllowance(deployer, spender, uint256.NewInt(11))
		if !errors.Is(err, ErrAllowanceUnderflow) {
			t.Fatalf("expected ErrAllowanceUnderflow, got %v", err)
		}
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(10)) {
			t.Errorf("allowance changed after failed decrease: %s", got.Dec())
		}
	})

	t.Run("IncreaseOverflow", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		max := maxUint256()
		must(l.Approve(deployer, spender, max))
		if _, err := l.IncreaseAllowance(deployer, spender, uint256.NewInt(1)); !errors.Is(err, ErrArithmeticOverflow) {
			t.Errorf("expected ErrArithmeticOverflow, got %v", err)
		}
		if got := l.Allowance(deployer, spender); !got.Eq(max) {
			t.Errorf("allowance changed after failed increase")
		}
	})
}

func TestTransferFrom(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(50)))
		ev := must(l.TransferFrom(spender, deployer, recipient, uint256.NewInt(30)))

		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(20)) {
			t.Errorf("allowance = %s, want 20", got.Dec())
		}
		if got := l.BalanceOf(recipient); !got.Eq(uint256.NewInt(30)) {
			t.Errorf("recipient balance = %s, want 30", got.Dec())
		}
		if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(970)) {
			t.Errorf("deployer balance = %s, want 970", got.Dec())
		}
		if ev.Type != EventTransfer || ev.From != deployer || ev.To != recipient {
			t.Errorf("unexpected event: %s", ev)
		}
		checkConservation(t, l)
	})

	t.Run("InsufficientAllowance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(10)))
		if _, err := l.TransferFrom(spender, deployer, recipient, uint256.NewInt(11)); !errors.Is(err, ErrInsufficientAllowance) {
			t.Errorf("expected ErrInsufficientAllowance, got %v", err)
		}
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		// Allowance larger than the owner's balance.
		l := newTestLedger(t, 100)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(500)))
		_, err := l.TransferFrom(spender, deployer, recipient, uint256.NewInt(200))
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		// The allowance must survive the failed transfer.
		if got := l.Allowance(deployer, spender); !got.Eq(uint256.NewInt(500)) {
			t.Errorf("allowance changed after failure: %s", got.Dec())
		}
	})

	t.Run("ZeroRecipient", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(50)))
		if _, err := l.TransferFrom(spender, deployer, ZeroAddress, uint256.NewInt(10)); !errors.Is(err, ErrInvalidRecipient) {
			t.Errorf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("ExactAllowance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Approve(deployer, spender, uint256.NewInt(50)))
		must(l.TransferFrom(spender, deployer, recipient, uint256.NewInt(50)))
		if got := l.Allowance(deployer, spender); !got.IsZero() {
			t.Errorf("allowance = %s, want 0", got.Dec())
		}
	})

	t.Run("SelfTransferFullMaxBalance", func(t *testing.T) {
		// The balances cancel out, so no overflow check applies, but the
		// allowance is still consumed.
		max := maxUint256()
		l, _, err := New("T", "T", max, deployer)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		must := mustOK(t)
		must(l.Approve(deployer, spender, max))
		must(l.TransferFrom(spender, deployer, deployer, max))
		if got := l.BalanceOf(deployer); !got.Eq(max) {
			t.Errorf("self-transfer changed balance: %s", got.Dec())
		}
		if got := l.Allowance(deployer, spender); !got.IsZero() {
			t.Errorf("allowance = %s, want 0 after self-transfer", got.Dec())
		}
		checkConservation(t, l)
	})
}

func TestMint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		ev := must(l.Mint(deployer, recipient, uint256.NewInt(500)))

		if got := l.TotalSupply(); !got.Eq(uint256.NewInt(1500)) {
			t.Errorf("total supply = %s, want 1500", got.Dec())
		}
		if got := l.BalanceOf(recipient); !got.Eq(uint256.NewInt(500)) {
			t.Errorf("recipient balance = %s, want 500", got.Dec())
		}
		if !ev.From.IsZero() {
			t.Errorf("mint event sender = %s, want zero address", ev.From)
		}
		checkConservation(t, l)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		_, err := l.Mint(recipient, recipient, uint256.NewInt(500))
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if got := l.TotalSupply(); !got.Eq(uint256.NewInt(1000)) {
			t.Errorf("supply changed after unauthorized mint: %s", got.Dec())
		}
		if got := l.BalanceOf(recipient); !got.IsZero() {
			t.Errorf("balance changed after unauthorized mint: %s", got.Dec())
		}
	})

	t.Run("ZeroRecipient", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.Mint(deployer, ZeroAddress, uint256.NewInt(1)); !errors.Is(err, ErrInvalidRecipient) {
			t.Errorf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("SupplyOverflow", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		_, err := l.Mint(deployer, recipient, maxUint256())
		if !errors.Is(err, ErrArithmeticOverflow) {
			t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
		}
		if got := l.TotalSupply(); !got.Eq(uint256.NewInt(1000)) {
			t.Errorf("supply changed after failed mint: %s", got.Dec())
		}
		checkConservation(t, l)
	})
}

func TestBurn(t *testing.T) {
	t.Run("Partial", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		ev := must(l.Burn(deployer, uint256.NewInt(400)))

		if got := l.TotalSupply(); !got.Eq(uint256.NewInt(600)) {
			t.Errorf("total supply = %s, want 600", got.Dec())
		}
		if got := l.BalanceOf(deployer); !got.Eq(uint256.NewInt(600)) {
			t.Errorf("deployer balance = %s, want 600", got.Dec())
		}
		if !ev.To.IsZero() {
			t.Errorf("burn event recipient = %s, want zero address", ev.To)
		}
		checkConservation(t, l)
	})

	t.Run("FullBalance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Burn(deployer, uint256.NewInt(1000)))
		if got := l.BalanceOf(deployer); !got.IsZero() {
			t.Errorf("deployer balance = %s, want 0", got.Dec())
		}
		if got := l.TotalSupply(); !got.IsZero() {
			t.Errorf("total supply = %s, want 0", got.Dec())
		}
		checkConservation(t, l)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.Burn(deployer, uint256.NewInt(1001)); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("NotOwnerRestricted", func(t *testing.T) {
		// Anyone may burn their own holdings.
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		must(l.Transfer(deployer, recipient, uint256.NewInt(100)))
		must(l.Burn(recipient, uint256.NewInt(100)))
		if got := l.TotalSupply(); !got.Eq(uint256.NewInt(900)) {
			t.Errorf("total supply = %s, want 900", got.Dec())
		}
		checkConservation(t, l)
	})
}

func TestTransferOwnership(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		must := mustOK(t)
		ev := must(l.TransferOwnership(deployer, recipient))
		if l.Owner() != recipient {
			t.Errorf("owner = %s, want %s", l.Owner(), recipient)
		}
		if ev.Type != EventOwnershipTransferred || ev.From != deployer || ev.To != recipient {
			t.Errorf("unexpected event: %s", ev)
		}

		// Old owner loses mint rights, new owner gains them.
		if _, err := l.Mint(deployer, deployer, uint256.NewInt(1)); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("old owner can still mint: %v", err)
		}
		must(l.Mint(recipient, recipient, uint256.NewInt(1)))
	})

	t.Run("Unauthorized", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.TransferOwnership(recipient, recipient); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("ZeroNewOwner", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		if _, err := l.TransferOwnership(deployer, ZeroAddress); !errors.Is(err, ErrInvalidOwner) {
			t.Errorf("expected ErrInvalidOwner, got %v", err)
		}
	})
}

func TestConservationUnderMixedOperations(t *testing.T) {
	l := newTestLedger(t, 10000)

	ops := []func() (*Event, error){
		func() (*Event, error) { return l.Transfer(deployer, recipient, uint256.NewInt(1234)) },
		func() (*Event, error) { return l.Mint(deployer, spender, uint256.NewInt(777)) },
		func() (*Event, error) { return l.Approve(deployer, spender, uint256.NewInt(999)) },
		func() (*Event, error) { return l.TransferFrom(spender, deployer, recipient, uint256.NewInt(500)) },
		func() (*Event, error) { return l.Burn(recipient, uint256.NewInt(300)) },
		func() (*Event, error) { return l.Transfer(spender, deployer, uint256.NewInt(77)) },
	}
	for i, op := range ops {
		if _, err := op(); err != nil {
			t.Fatalf("op %d failed: %v", i, err)
		}
		checkConservation(t, l)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	l := newTestLedger(t, 1000)
	snap := l.Snapshot()

	must := mustOK(t)
	must(l.Transfer(deployer, recipient, uint256.NewInt(600)))

	if got := snap.Balances[deployer]; !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("snapshot mutated by later transfer: %s", got.Dec())
	}
	if len(snap.Holders()) != 1 {
		t.Errorf("snapshot holders = %d, want 1", len(snap.Holders()))
	}
}
