package audit

import (
	"context"
	"time"

	"github.com/dagbolade/molselector/internal/ledger"
)

// Event is one recorded decision as mirrored into the audit trail.
type Event struct {
	SessionID  string
	Folder     string
	File       string
	Decision   ledger.Decision
	RecordedAt time.Time
}

type Entry struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	Folder     string          `json:"folder"`
	File       string          `json:"file"`
	Decision   ledger.Decision `json:"decision"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type Store interface {
	Log(ctx context.Context, event Event) error
	GetAll(ctx context.Context) ([]Entry, error)
	Close() error
}
