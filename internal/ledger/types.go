package ledger

import (
	"fmt"
	"path/filepath"

	"github.com/dagbolade/molselector/internal/apperr"
)

// FileName is the ledger kept inside every reviewed folder.
const FileName = "results.csv"

const (
	columnFile      = "file"
	columnDecision  = "decision"
	columnTimestamp = "timestamp"
)

var header = []string{columnFile, columnDecision, columnTimestamp}

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionDecline
}

// ParseDecision accepts exactly "accept" or "decline".
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.Valid() {
		return "", apperr.Validation("Decision must be 'accept' or 'decline'")
	}
	return d, nil
}

// Record is one ledger row.
type Record struct {
	File      string   `json:"file"`
	Decision  Decision `json:"decision"`
	Timestamp string   `json:"timestamp"`
}

// RowError describes a ledger row that was skipped during replay.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Replay holds the readable rows of a ledger in file order.
type Replay struct {
	Records []Record
	Skipped []RowError
}

// Latest folds the records into file -> decision, last row wins.
func (r Replay) Latest() map[string]Decision {
	latest := make(map[string]Decision, len(r.Records))
	for _, rec := range r.Records {
		latest[rec.File] = rec.Decision
	}
	return latest
}

// PathFor returns the ledger location for a folder.
func PathFor(folder string) string {
	return filepath.Join(folder, FileName)
}
