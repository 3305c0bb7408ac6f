package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-tokenledger/token"
)

func transfer(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	from := fs.String("from", "", "Sender address (hex)")
	to := fs.String("to", "", "Recipient address (hex)")
	amount := fs.String("amount", "", "Amount to move (decimal, base units)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger transfer --ledger <id> --from <addr> --to <addr> --amount <n> [options]

Move tokens from the sender to the recipient. Fails without side
effects if the sender's balance is insufficient or the recipient is
the zero address.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger transfer --ledger 7f3c... \
      --from 0x1111111111111111111111111111111111111111 \
      --to 0x2222222222222222222222222222222222222222 \
      --amount 50000000000000000000
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	fromAddr, err := parseAddress("from", *from)
	if err != nil {
		return err
	}
	toAddr, err := parseAddress("to", *to)
	if err != nil {
		return err
	}
	value, err := parseAmount("amount", *amount)
	if err != nil {
		return err
	}

	return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
		return l.Transfer(fromAddr, toAddr, value)
	})
}

func approve(args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	owner := fs.String("owner", "", "Owner address (hex)")
	spender := fs.String("spender", "", "Spender address (hex)")
	amount := fs.String("amount", "", "Allowance to set (decimal, base units)")
	increase := fs.String("increase", "", "Raise the allowance by this amount instead")
	decrease := fs.String("decrease", "", "Lower the allowance by this amount instead")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger approve --ledger <id> --owner <addr> --spender <addr> --amount <n> [options]

Set the spender's allowance to an absolute amount. The last write
wins. Use --increase or --decrease for relative adjustments, which
avoid the read-then-set race of an absolute approve.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Absolute approval
  tokenledger approve --ledger 7f3c... \
      --owner 0x1111111111111111111111111111111111111111 \
      --spender 0x3333333333333333333333333333333333333333 \
      --amount 100

  # Relative adjustment
  tokenledger approve --ledger 7f3c... \
      --owner 0x1111... --spender 0x3333... --increase 25
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	ownerAddr, err := parseAddress("owner", *owner)
	if err != nil {
		return err
	}
	spenderAddr, err := parseAddress("spender", *spender)
	if err != nil {
		return err
	}

	modes := 0
	for _, v := range []string{*amount, *increase, *decrease} {
		if v != "" {
			modes++
		}
	}
	if modes != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one of --amount, --increase, --decrease is required")
	}

	switch {
	case *increase != "":
		value, err := parseAmount("increase", *increase)
		if err != nil {
			return err
		}
		return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
			return l.IncreaseAllowance(ownerAddr, spenderAddr, value)
		})
	case *decrease != "":
		value, err := parseAmount("decrease", *decrease)
		if err != nil {
			return err
		}
		return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
			return l.DecreaseAllowance(ownerAddr, spenderAddr, value)
		})
	default:
		value, err := parseAmount("amount", *amount)
		if err != nil {
			return err
		}
		return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
			return l.Approve(ownerAddr, spenderAddr, value)
		})
	}
}

func transferFrom(args []string) error {
	fs := flag.NewFlagSet("transfer-from", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	caller := fs.String("caller", "", "Spender address executing the transfer (hex)")
	from := fs.String("from", "", "Account the tokens leave (hex)")
	to := fs.String("to", "", "Recipient address (hex)")
	amount := fs.String("amount", "", "Amount to move (decimal, base units)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger transfer-from --ledger <id> --caller <addr> --from <addr> --to <addr> --amount <n> [options]

Move tokens out of the from-account using the caller's allowance.
The allowance is reduced by the amount moved.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger transfer-from --ledger 7f3c... \
      --caller 0x3333333333333333333333333333333333333333 \
      --from 0x1111111111111111111111111111111111111111 \
      --to 0x2222222222222222222222222222222222222222 \
      --amount 30
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	callerAddr, err := parseAddress("caller", *caller)
	if err != nil {
		return err
	}
	fromAddr, err := parseAddress("from", *from)
	if err != nil {
		return err
	}
	toAddr, err := parseAddress("to", *to)
	if err != nil {
		return err
	}
	value, err := parseAmount("amount", *amount)
	if err != nil {
		return err
	}

	repo, store, err := openRepository(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Delegated transfers go through the repository's own method so the
	// consumed allowance is part of the persisted event.
	ev, err := repo.TransferFrom(context.Background(), *ledgerID, callerAddr, fromAddr, toAddr, value)
	if err != nil {
		return err
	}
	printEvent(ev)
	return nil
}

func mint(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	caller := fs.String("caller", "", "Caller address, must be the ledger owner (hex)")
	to := fs.String("to", "", "Recipient of the new tokens (hex)")
	amount := fs.String("amount", "", "Amount to create (decimal, base units)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger mint --ledger <id> --caller <addr> --to <addr> --amount <n> [options]

Create new tokens and credit them to the recipient. Only the ledger
owner may mint.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger mint --ledger 7f3c... \
      --caller 0x1111111111111111111111111111111111111111 \
      --to 0x2222222222222222222222222222222222222222 \
      --amount 500
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	callerAddr, err := parseAddress("caller", *caller)
	if err != nil {
		return err
	}
	toAddr, err := parseAddress("to", *to)
	if err != nil {
		return err
	}
	value, err := parseAmount("amount", *amount)
	if err != nil {
		return err
	}

	return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
		return l.Mint(callerAddr, toAddr, value)
	})
}

func burn(args []string) error {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	caller := fs.String("caller", "", "Account burning its own tokens (hex)")
	amount := fs.String("amount", "", "Amount to destroy (decimal, base units)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger burn --ledger <id> --caller <addr> --amount <n> [options]

Destroy tokens held by the caller, reducing total supply.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger burn --ledger 7f3c... \
      --caller 0x2222222222222222222222222222222222222222 \
      --amount 100
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	callerAddr, err := parseAddress("caller", *caller)
	if err != nil {
		return err
	}
	value, err := parseAmount("amount", *amount)
	if err != nil {
		return err
	}

	return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
		return l.Burn(callerAddr, value)
	})
}

func transferOwnership(args []string) error {
	fs := flag.NewFlagSet("transfer-ownership", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	caller := fs.String("caller", "", "Current owner address (hex)")
	newOwner := fs.String("new-owner", "", "Address receiving ownership (hex)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger transfer-ownership --ledger <id> --caller <addr> --new-owner <addr> [options]

Hand the ledger, and with it the right to mint, to a new owner.
Only the current owner may do this.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger transfer-ownership --ledger 7f3c... \
      --caller 0x1111111111111111111111111111111111111111 \
      --new-owner 0x2222222222222222222222222222222222222222
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	callerAddr, err := parseAddress("caller", *caller)
	if err != nil {
		return err
	}
	newOwnerAddr, err := parseAddress("new-owner", *newOwner)
	if err != nil {
		return err
	}

	return execute(*dbPath, *ledgerID, func(l *token.Ledger) (*token.Event, error) {
		return l.TransferOwnership(callerAddr, newOwnerAddr)
	})
}

// execute runs one ledger operation against the stored stream and prints
// the resulting event.
func execute(dbPath, ledgerID string, op func(l *token.Ledger) (*token.Event, error)) error {
	repo, store, err := openRepository(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ev, err := repo.Execute(context.Background(), ledgerID, op)
	if err != nil {
		return err
	}
	printEvent(ev)
	return nil
}
