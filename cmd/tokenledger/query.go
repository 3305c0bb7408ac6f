package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-tokenledger/token"
)

func info(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger info --ledger <id> [options]

Show a ledger's metadata, total supply, owner, and holder count.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger info --ledger 7f3c... --db tokens.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}

	repo, store, err := openRepository(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	agg, err := repo.Load(context.Background(), *ledgerID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l := agg.Ledger()
	snap := l.Snapshot()
	fmt.Printf("%s (%s)\n", l.Name(), l.Symbol())
	fmt.Printf("  Ledger ID: %s\n", agg.ID())
	fmt.Printf("  Decimals:  %d\n", token.Decimals)
	fmt.Printf("  Supply:    %s\n", l.TotalSupply().Dec())
	fmt.Printf("  Owner:     %s\n", l.Owner())
	fmt.Printf("  Holders:   %d\n", len(snap.Holders()))
	fmt.Printf("  Events:    %d\n", agg.Version()+1)
	return nil
}

func balance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	account := fs.String("account", "", "Account address (hex)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger balance --ledger <id> --account <addr> [options]

Show the token balance of an account.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger balance --ledger 7f3c... \
      --account 0x2222222222222222222222222222222222222222
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ledgerID == "" {
		fs.Usage()
		return fmt.Errorf("--ledger is required")
	}
	addr, err := parseAddress("account", *account)
	if err != nil {
		return err
	}

	repo, store, err := openRepository(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	agg, err := repo.Load(context.Background(), *ledgerID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	fmt.Printf("%s: %s %s\n", addr, agg.Ledger().BalanceOf(addr).Dec(), agg.Ledger().Symbol())
	return nil
}

func allowance(args []string) error {
	fs := flag.NewFlagSet("allowance", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	owner := fs.String("owner", "", "Owner address (hex)")
	spender := fs.String("spender", "", "Spender address (hex)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger allowance --ledger <id> --owner <addr> --spender <addr> [options]

Show how much a spender may move on an owner's behalf.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tokenledger allowance --ledger 7f3c... \
      --owner 0x1111111111111111111111111111111111111111 \
      --spender 0x3333333333333333333333333333333333333333
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

	repo, store, err := openRepository(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	agg, err := repo.Load(context.Background(), *ledgerID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	value := agg.Ledger().Allowance(ownerAddr, spenderAddr)
	fmt.Printf("%s -> %s: %s %s\n", ownerAddr, spenderAddr, value.Dec(), agg.Ledger().Symbol())
	return nil
}
