package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/pflow-xyz/go-tokenledger/token"
)

// deployConfig is the JSON shape accepted by the deploy command.
type deployConfig struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	InitialSupply string `json:"initial_supply"`
	Deployer      string `json:"deployer"`
}

func deploy(args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	configFile := fs.String("config", "", "JSON config file (reads stdin if omitted and no flags given)")
	name := fs.String("name", "", "Token name")
	symbol := fs.String("symbol", "", "Token symbol")
	supply := fs.String("supply", "0", "Initial supply (decimal, base units)")
	deployer := fs.String("deployer", "", "Deployer address (hex, becomes owner)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger deploy [options]

Create a new token ledger. The initial supply is credited to the
deployer, who also becomes the ledger owner.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Config file format:
  {
    "name": "Example Token",
    "symbol": "EXT",
    "initial_supply": "1000000000000000000000",
    "deployer": "0x1111111111111111111111111111111111111111"
  }

Examples:
  # Deploy from a config file
  tokenledger deploy --config token.json

  # Deploy from flags
  tokenledger deploy --name "Example Token" --symbol EXT \
      --supply 1000000000000000000000 \
      --deployer 0x1111111111111111111111111111111111111111
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := deployConfig{
		Name:          *name,
		Symbol:        *symbol,
		InitialSupply: *supply,
		Deployer:      *deployer,
	}
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Name == "" {
		return fmt.Errorf("token name required (--name or config)")
	}
	if cfg.Symbol == "" {
		return fmt.Errorf("token symbol required (--symbol or config)")
	}
	deployerAddr, err := parseAddress("deployer", cfg.Deployer)
	if err != nil {
		return err
	}
	if cfg.InitialSupply == "" {
		cfg.InitialSupply = "0"
	}
	initialSupply, err := uint256.FromDecimal(cfg.InitialSupply)
	if err != nil {
		return fmt.Errorf("invalid initial supply: %w", err)
	}

	repo, store, err := openRepository(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id, err := repo.Deploy(ctx, cfg.Name, cfg.Symbol, initialSupply, deployerAddr)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	agg, err := repo.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	ledger := agg.Ledger()
	fmt.Printf("Deployed %s (%s)\n", ledger.Name(), ledger.Symbol())
	fmt.Printf("  Ledger ID: %s\n", id)
	fmt.Printf("  Owner:     %s\n", ledger.Owner())
	fmt.Printf("  Supply:    %s\n", ledger.TotalSupply().Dec())
	fmt.Printf("  Decimals:  %d\n", token.Decimals)
	return nil
}
