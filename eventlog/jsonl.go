package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSONL writes the journal as JSON Lines, one record per line.
func (j *Journal) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for i := range j.Records {
		if err := enc.Encode(&j.Records[i]); err != nil {
			return fmt.Errorf("eventlog: encoding record %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSONLFile writes the journal to a JSONL file.
func (j *Journal) WriteJSONLFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("eventlog: creating file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := j.WriteJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSONL parses a journal from JSON Lines input. Empty lines are skipped;
// records are sorted by sequence after loading.
func ReadJSONL(r io.Reader) (*Journal, error) {
	j := NewJournal()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: invalid JSON: %w", lineNum, err)
		}
		// Validate the amount eagerly so malformed values fail at load time.
		if _, err := rec.Amount(); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", lineNum, err)
		}
		j.Append(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: reading input: %w", err)
	}

	j.Sort()
	return j, nil
}

// ReadJSONLFile parses a journal from a JSONL file.
func ReadJSONLFile(filename string) (*Journal, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("eventlog: opening file: %w", err)
	}
	defer f.Close()

	return ReadJSONL(f)
}
