package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "deploy":
		if err := deploy(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "info":
		if err := info(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "balance":
		if err := balance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "allowance":
		if err := allowance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "transfer":
		if err := transfer(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "approve":
		if err := approve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "transfer-from":
		if err := transferFrom(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mint":
		if err := mint(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "burn":
		if err := burn(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "transfer-ownership":
		if err := transferOwnership(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "verify":
		if err := verify(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("tokenledger version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokenledger - fungible-token ledger tool

Usage: tokenledger <command> [options]

Deployment:
  deploy              Create a new ledger from a JSON config

Queries:
  info                Show ledger metadata, supply, and owner
  balance             Show an account balance
  allowance           Show a spender allowance

Operations:
  transfer            Move tokens between accounts
  approve             Set a spender allowance
  transfer-from       Spend an allowance on the owner's behalf
  mint                Create new tokens (ledger owner only)
  burn                Destroy tokens held by an account
  transfer-ownership  Hand the ledger to a new owner

Inspection:
  events              Export a ledger's event journal (jsonl or csv)
  verify              Replay a ledger, check conservation, print commitment

Other:
  help                Show this help
  version             Show version

All commands take --db <path> to select the ledger database
(default: tokenledger.db).

Run 'tokenledger <command> -h' for command options.`)
}
