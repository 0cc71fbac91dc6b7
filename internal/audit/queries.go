package audit

import "time"

const (
	queryInsertEntry = `
		INSERT INTO decision_log (session_id, folder, file, decision, recorded_at)
		VALUES (?, ?, ?, ?, ?)`

	querySelectAll = `
		SELECT id, session_id, folder, file, decision, recorded_at
		FROM decision_log
		ORDER BY id DESC`

	timestampLayout = time.RFC3339Nano
)
