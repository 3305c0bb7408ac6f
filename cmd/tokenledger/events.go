package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-tokenledger/eventlog"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the ledger database")
	ledgerID := fs.String("ledger", "", "Ledger ID")
	format := fs.String("format", "jsonl", "Output format: jsonl or csv")
	output := fs.String("output", "", "Write to file instead of stdout")
	eventType := fs.String("type", "", "Only export events of this type (Transfer, Approval, ...)")
	account := fs.String("account", "", "Only export events touching this address (hex)")
	summary := fs.Bool("summary", false, "Print per-type counts and volume instead of records")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tokenledger events --ledger <id> [options]

Export a ledger's event journal in sequence order.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full journal as JSON Lines
  tokenledger events --ledger 7f3c...

  # Transfers only, as CSV
  tokenledger events --ledger 7f3c... --type Transfer --format csv

  # Everything touching one account
  tokenledger events --ledger 7f3c... \
      --account 0x2222222222222222222222222222222222222222

  # Activity summary
  tokenledger events --ledger 7f3c... --summary

  # Save to file
  tokenledger events --ledger 7f3c... --format csv --output journal.csv
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

	journal, err := repo.Journal(context.Background(), *ledgerID)
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	if *eventType != "" {
		journal = fromRecords(journal.FilterType(*eventType))
	}
	if *account != "" {
		addr, err := parseAddress("account", *account)
		if err != nil {
			return err
		}
		journal = fromRecords(journal.FilterAccount(addr))
	}

	if *summary {
		journal.Summarize().Print()
		return nil
	}

	if *output != "" {
		switch *format {
		case "jsonl":
			err = journal.WriteJSONLFile(*output)
		case "csv":
			err = journal.WriteCSVFile(*output)
		default:
			return fmt.Errorf("unknown format %q (want jsonl or csv)", *format)
		}
		if err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		fmt.Printf("Wrote %d records to %s\n", journal.Len(), *output)
		return nil
	}

	switch *format {
	case "jsonl":
		return journal.WriteJSONL(os.Stdout)
	case "csv":
		return journal.WriteCSV(os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (want jsonl or csv)", *format)
	}
}

func fromRecords(records []eventlog.Record) *eventlog.Journal {
	j := eventlog.NewJournal()
	for _, r := range records {
		j.Append(r)
	}
	return j
}
