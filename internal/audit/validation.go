package audit

import (
	"fmt"
)

func validateEvent(event Event) error {
	if event.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if event.Folder == "" {
		return fmt.Errorf("folder cannot be empty")
	}

	if event.File == "" {
		return fmt.Errorf("file cannot be empty")
	}

	if !event.Decision.Valid() {
		return fmt.Errorf("invalid decision: %s", event.Decision)
	}

	if event.RecordedAt.IsZero() {
		return fmt.Errorf("recorded_at cannot be zero")
	}

	return nil
}
