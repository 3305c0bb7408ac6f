package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"sequence", "ledger_id", "type", "from", "to", "value", "timestamp"}

// WriteCSV writes the journal as CSV with a header row.
func (j *Journal) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("eventlog: writing header: %w", err)
	}
	for i, r := range j.Records {
		row := []string{
			strconv.FormatUint(r.Sequence, 10),
			r.LedgerID,
			r.Type,
			r.From,
			r.To,
			r.Value,
			r.Timestamp.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("eventlog: writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the journal to a CSV file.
func (j *Journal) WriteCSVFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("eventlog: creating file: %w", err)
	}
	defer f.Close()

	return j.WriteCSV(f)
}

// ReadCSV parses a journal from CSV input produced by WriteCSV.
func ReadCSV(r io.Reader) (*Journal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("eventlog: reading header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("eventlog: unexpected header column %d: got %q, want %q", i, header[i], col)
		}
	}

	j := NewJournal()
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", line, err)
		}

		seq, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("eventlog: line %d: bad sequence %q: %w", line, row[0], err)
		}
		ts, err := time.Parse(time.RFC3339Nano, row[6])
		if err != nil {
			return nil, fmt.Errorf("eventlog: line %d: bad timestamp %q: %w", line, row[6], err)
		}

		rec := Record{
			Sequence:  seq,
			LedgerID:  row[1],
			Type:      row[2],
			From:      row[3],
			To:        row[4],
			Value:     row[5],
			Timestamp: ts,
		}
		if _, err := rec.Amount(); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", line, err)
		}
		j.Append(rec)
	}

	j.Sort()
	return j, nil
}

// ReadCSVFile parses a journal from a CSV file.
func ReadCSVFile(filename string) (*Journal, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("eventlog: opening file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}
