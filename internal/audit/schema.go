package audit

const (
	tableSchema = `
		CREATE TABLE IF NOT EXISTS decision_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			folder TEXT NOT NULL,
			file TEXT NOT NULL,
			decision TEXT NOT NULL CHECK(decision IN ('accept', 'decline')),
			recorded_at TEXT NOT NULL
		)`

	triggerPreventUpdate = `
		CREATE TRIGGER IF NOT EXISTS prevent_update
		BEFORE UPDATE ON decision_log
		FOR EACH ROW
		BEGIN
			SELECT RAISE(FAIL, 'Updates not allowed on decision_log');
		END`

	triggerPreventDelete = `
		CREATE TRIGGER IF NOT EXISTS prevent_delete
		BEFORE DELETE ON decision_log
		FOR EACH ROW
		BEGIN
			SELECT RAISE(FAIL, 'Deletes not allowed on decision_log');
		END`

	indexFolder = `
		CREATE INDEX IF NOT EXISTS idx_folder_file ON decision_log(folder, file)`
)

func schemaStatements() []string {
	return []string{
		tableSchema,
		triggerPreventUpdate,
		triggerPreventDelete,
		indexFolder,
	}
}
