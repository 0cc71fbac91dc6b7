package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
)

var (
	errMissingColumns  = errors.New("header lacks file or decision column")
	errMissingFile     = errors.New("missing file name")
	errUnknownDecision = errors.New("unknown decision")
)

// Read replays the ledger at path. A missing or empty ledger yields an
// empty Replay; unreadable rows are reported in Replay.Skipped.
func Read(path string) (Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Replay{}, nil
		}
		return Replay{}, oops.In("ledger").With("path", path).Wrapf(err, "open ledger")
	}
	defer f.Close()

	result, err := replay(f)
	if err != nil {
		return result, oops.In("ledger").With("path", path).Wrapf(err, "read ledger")
	}

	for _, skipped := range result.Skipped {
		log.Warn().Str("path", path).Int("line", skipped.Line).Err(skipped.Err).Msg("skipping malformed ledger row")
	}

	return result, nil
}

func replay(r io.Reader) (Replay, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var (
		result  Replay
		columns map[string]int
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped = append(result.Skipped, RowError{Line: parseErr.StartLine, Err: parseErr.Err})
				continue
			}
			return result, err
		}

		line, _ := reader.FieldPos(0)

		if columns == nil {
			columns = indexColumns(row)
			continue
		}

		rec, err := parseRow(row, columns)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Err: err})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func indexColumns(row []string) map[string]int {
	columns := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	return columns
}

func parseRow(row []string, columns map[string]int) (Record, error) {
	fileIdx, hasFile := columns[columnFile]
	decisionIdx, hasDecision := columns[columnDecision]
	if !hasFile || !hasDecision {
		return Record{}, errMissingColumns
	}

	file := strings.TrimSpace(field(row, fileIdx))
	if file == "" {
		return Record{}, errMissingFile
	}

	decision := Decision(strings.TrimSpace(field(row, decisionIdx)))
	if !decision.Valid() {
		return Record{}, fmt.Errorf("%w: %q", errUnknownDecision, decision)
	}

	rec := Record{File: file, Decision: decision}
	if idx, ok := columns[columnTimestamp]; ok {
		rec.Timestamp = strings.TrimSpace(field(row, idx))
	}
	return rec, nil
}

func field(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
