package audit

import (
	"database/sql"
	"fmt"
	"time"
)

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var recordedAt string

	if err := rows.Scan(&e.ID, &e.SessionID, &e.Folder, &e.File, &e.Decision, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan row: %w", err)
	}

	parsed, err := time.Parse(timestampLayout, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	e.RecordedAt = parsed

	return e, nil
}
