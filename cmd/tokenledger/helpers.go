package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pflow-xyz/go-tokenledger/eventsource"
	"github.com/pflow-xyz/go-tokenledger/token"
)

const defaultDBPath = "tokenledger.db"

// openRepository opens the sqlite-backed event store at path and wraps
// it in a repository. The caller owns the returned store and must close it.
func openRepository(path string) (*eventsource.Repository, eventsource.Store, error) {
	store, err := eventsource.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return eventsource.NewRepository(store), store, nil
}

func parseAddress(name, value string) (token.Address, error) {
	if value == "" {
		return token.Address{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := token.ParseAddress(value)
	if err != nil {
		return token.Address{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return addr, nil
}

func parseAmount(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return amount, nil
}

func printEvent(ev *token.Event) {
	fmt.Printf("Event: %s\n", ev.String())
}
