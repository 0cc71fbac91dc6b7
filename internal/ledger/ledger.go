package ledger

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/samber/oops"
)

// Ledger appends decision rows to a folder's results.csv.
type Ledger struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	now  func() time.Time
}

func New(path string) *Ledger {
	return &Ledger{
		path: path,
		lock: flock.New(lockPath(path)),
		now:  time.Now,
	}
}

// ForFolder returns the ledger stored in folder.
func ForFolder(folder string) *Ledger {
	return New(PathFor(folder))
}

func (l *Ledger) Path() string {
	return l.path
}

// Replay reads every row currently in the ledger.
func (l *Ledger) Replay() (Replay, error) {
	return Read(l.path)
}

// Append writes one row for file. The header is written first when the
// ledger is new or empty. Each call issues a single write.
func (l *Ledger) Append(file string, decision Decision) (Record, error) {
	if !decision.Valid() {
		return Record{}, oops.In("ledger").With("decision", decision).Errorf("refusing to append invalid decision")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lock.Lock(); err != nil {
		return Record{}, oops.In("ledger").With("path", l.path).Wrapf(err, "acquire ledger lock")
	}
	defer func() { _ = l.lock.Unlock() }()

	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return Record{}, oops.In("ledger").With("path", l.path).Wrapf(err, "open ledger")
	}
	defer f.Close()

	needsHeader, unterminated, err := inspect(f)
	if err != nil {
		return Record{}, oops.In("ledger").With("path", l.path).Wrapf(err, "inspect ledger")
	}

	rec := Record{
		File:      file,
		Decision:  decision,
		Timestamp: l.now().UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if unterminated {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	if needsHeader {
		_ = w.Write(header)
	}
	_ = w.Write([]string{rec.File, string(rec.Decision), rec.Timestamp})
	w.Flush()
	if err := w.Error(); err != nil {
		return Record{}, oops.In("ledger").Wrapf(err, "encode ledger row")
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return Record{}, oops.In("ledger").With("path", l.path).Wrapf(err, "append ledger row")
	}

	return rec, nil
}

// inspect reports whether the ledger is empty and whether a hand edit
// left its last row without a trailing newline.
func inspect(f *os.File) (empty, unterminated bool, err error) {
	info, err := f.Stat()
	if err != nil {
		return false, false, err
	}
	if info.Size() == 0 {
		return true, false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, false, err
	}
	return false, last[0] != '\n', nil
}

func lockPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".lock")
}
