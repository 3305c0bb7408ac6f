// Package eventlog records the notification stream of a token ledger in a
// form suitable for export to block explorers and indexers. It supports the
// JSONL and CSV interchange formats.
package eventlog

import (
	"fmt"
	"sort"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/token"
)

// Record is one ledger notification with its position in the stream.
// Amounts are carried as decimal strings so large values survive JSON
// round-trips without scientific-notation mangling.
type Record struct {
	Sequence  uint64    `json:"sequence"`
	LedgerID  string    `json:"ledger_id"`
	Type      string    `json:"type"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     string    `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord converts a ledger event into a journal record.
func NewRecord(seq uint64, ledgerID string, ev *token.Event, at time.Time) Record {
	r := Record{
		Sequence:  seq,
		LedgerID:  ledgerID,
		Type:      string(ev.Type),
		From:      ev.From.String(),
		To:        ev.To.String(),
		Timestamp: at.UTC(),
	}
	if ev.Value != nil {
		r.Value = ev.Value.Dec()
	}
	return r
}

// Amount parses the record's value as a 256-bit integer. Records without a
// value (ownership changes) yield zero.
func (r Record) Amount() (*uint256.Int, error) {
	if r.Value == "" {
		return uint256.NewInt(0), nil
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(r.Value); err != nil {
		return nil, fmt.Errorf("eventlog: bad value %q in record %d: %w", r.Value, r.Sequence, err)
	}
	return v, nil
}

// Journal is an append-only sequence of ledger records.
type Journal struct {
	Records []Record
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append adds a record to the journal.
func (j *Journal) Append(r Record) {
	j.Records = append(j.Records, r)
}

// Len returns the number of records.
func (j *Journal) Len() int {
	return len(j.Records)
}

// Sort orders records by sequence number.
func (j *Journal) Sort() {
	sort.Slice(j.Records, func(a, b int) bool {
		return j.Records[a].Sequence < j.Records[b].Sequence
	})
}

// FilterType returns the records of a single event type, in order.
func (j *Journal) FilterType(eventType string) []Record {
	var out []Record
	for _, r := range j.Records {
		if r.Type == eventType {
			out = append(out, r)
		}
	}
	return out
}

// FilterAccount returns the records that touch an account, as sender or
// recipient, in order.
func (j *Journal) FilterAccount(account token.Address) []Record {
	hex := account.String()
	var out []Record
	for _, r := range j.Records {
		if r.From == hex || r.To == hex {
			out = append(out, r)
		}
	}
	return out
}

// Summary holds basic statistics about a journal.
type Summary struct {
	NumRecords  int
	CountByType map[string]int
	FirstSeq    uint64
	LastSeq     uint64
	StartTime   time.Time
	EndTime     time.Time
}

// Summarize computes summary statistics for the journal.
func (j *Journal) Summarize() Summary {
	s := Summary{
		NumRecords:  len(j.Records),
		CountByType: make(map[string]int),
	}
	if len(j.Records) == 0 {
		return s
	}

	s.FirstSeq = j.Records[0].Sequence
	s.LastSeq = j.Records[0].Sequence
	s.StartTime = j.Records[0].Timestamp
	s.EndTime = j.Records[0].Timestamp

	for _, r := range j.Records {
		s.CountByType[r.Type]++
		if r.Sequence < s.FirstSeq {
			s.FirstSeq = r.Sequence
		}
		if r.Sequence > s.LastSeq {
			s.LastSeq = r.Sequence
		}
		if r.Timestamp.Before(s.StartTime) {
			s.StartTime = r.Timestamp
		}
		if r.Timestamp.After(s.EndTime) {
			s.EndTime = r.Timestamp
		}
	}
	return s
}

// Print writes the summary to stdout.
func (s Summary) Print() {
	fmt.Println("=== Ledger Event Summary ===")
	fmt.Printf("Records: %d\n", s.NumRecords)
	types := make([]string, 0, len(s.CountByType))
	for t := range s.CountByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-22s %d\n", t, s.CountByType[t])
	}
	if s.NumRecords > 0 {
		fmt.Printf("Sequence range: %d to %d\n", s.FirstSeq, s.LastSeq)
		fmt.Printf("Time range: %s to %s\n",
			s.StartTime.Format(time.RFC3339),
			s.EndTime.Format(time.RFC3339))
	}
}
