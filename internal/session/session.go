// Package session holds the folder currently under review and runs the
// select, read and decide operations against it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dagbolade/molselector/internal/apperr"
	"github.com/dagbolade/molselector/internal/audit"
	"github.com/dagbolade/molselector/internal/catalog"
	"github.com/dagbolade/molselector/internal/ledger"
	"github.com/dagbolade/molselector/internal/molecule"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const notSelectedMessage = "No folder selected"

// FileEntry is one listed molecule file. Decision is nil until recorded.
type FileEntry struct {
	Path     string           `json:"path"`
	Name     string           `json:"name"`
	Decision *ledger.Decision `json:"decision"`
}

type Listing struct {
	Folder     string      `json:"folder"`
	ResultsCSV string      `json:"results_csv"`
	Files      []FileEntry `json:"files"`
}

type Confirmation struct {
	File     string          `json:"file"`
	Decision ledger.Decision `json:"decision"`
}

type History struct {
	ResultsCSV string          `json:"results_csv"`
	Total      int             `json:"total"`
	Skipped    int             `json:"skipped"`
	Records    []ledger.Record `json:"records"`
}

type selection struct {
	id        string
	folder    string
	ledger    *ledger.Ledger
	files     []string
	listed    map[string]struct{}
	decisions map[string]ledger.Decision
}

// Session is created once per process and shared by every handler.
type Session struct {
	mu      sync.RWMutex
	current *selection
	audit   audit.Store
}

// New returns an empty session. auditStore may be nil.
func New(auditStore audit.Store) *Session {
	return &Session{audit: auditStore}
}

// SelectFolder scans dir, replays its ledger and replaces the current
// selection. On failure the previous selection is kept.
func (s *Session) SelectFolder(ctx context.Context, dir string) (Listing, error) {
	folder, err := catalog.Scan(dir)
	if err != nil {
		return Listing{}, err
	}

	l := ledger.ForFolder(folder.Path)
	replay, err := l.Replay()
	if err != nil {
		return Listing{}, err
	}

	sel := &selection{
		id:        uuid.New().String(),
		folder:    folder.Path,
		ledger:    l,
		files:     folder.Files,
		listed:    make(map[string]struct{}, len(folder.Files)),
		decisions: replay.Latest(),
	}
	for _, f := range folder.Files {
		sel.listed[f] = struct{}{}
	}

	s.mu.Lock()
	s.current = sel
	listing := sel.listing()
	s.mu.Unlock()

	log.Info().
		Str("session_id", sel.id).
		Str("folder", sel.folder).
		Int("files", len(sel.files)).
		Int("decided", len(sel.decisions)).
		Int("skipped_rows", len(replay.Skipped)).
		Msg("folder selected")

	return listing, nil
}

// Snapshot returns the current listing without rescanning the folder.
func (s *Session) Snapshot() (Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Listing{}, apperr.NotSelected(notSelectedMessage)
	}
	return s.current.listing(), nil
}

// Folder returns the selected folder, if any.
func (s *Session) Folder() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return "", false
	}
	return s.current.folder, true
}

// ReadMolecule returns the content of rel inside the selected folder.
func (s *Session) ReadMolecule(rel string) (molecule.Molecule, error) {
	folder, ok := s.Folder()
	if !ok {
		return molecule.Molecule{}, apperr.NotSelected(notSelectedMessage)
	}
	return molecule.Read(folder, rel)
}

// RecordDecision appends a decision for file to the ledger and updates
// the in-memory map. Either both change or neither does.
func (s *Session) RecordDecision(ctx context.Context, file, raw string) (Confirmation, error) {
	decision, err := ledger.ParseDecision(raw)
	if err != nil {
		return Confirmation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.current
	if sel == nil {
		return Confirmation{}, apperr.NotSelected(notSelectedMessage)
	}
	if _, ok := sel.listed[file]; !ok {
		return Confirmation{}, apperr.NotFound("File is not part of the selected folder: %s", file)
	}

	rec, err := sel.ledger.Append(file, decision)
	if err != nil {
		return Confirmation{}, err
	}
	sel.decisions[file] = decision

	log.Info().
		Str("session_id", sel.id).
		Str("file", file).
		Str("decision", string(decision)).
		Msg("decision recorded")

	s.mirror(ctx, sel, rec)

	return Confirmation{File: file, Decision: decision}, nil
}

// History returns every ledger row of the selected folder in file order.
func (s *Session) History() (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel := s.current
	if sel == nil {
		return History{}, apperr.NotSelected(notSelectedMessage)
	}

	replay, err := sel.ledger.Replay()
	if err != nil {
		return History{}, err
	}

	records := replay.Records
	if records == nil {
		records = []ledger.Record{}
	}
	return History{
		ResultsCSV: sel.ledger.Path(),
		Total:      len(records),
		Skipped:    len(replay.Skipped),
		Records:    records,
	}, nil
}

func (s *Session) mirror(ctx context.Context, sel *selection, rec ledger.Record) {
	if s.audit == nil {
		return
	}

	recordedAt, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		recordedAt = time.Now()
	}

	event := audit.Event{
		SessionID:  sel.id,
		Folder:     sel.folder,
		File:       rec.File,
		Decision:   rec.Decision,
		RecordedAt: recordedAt,
	}
	if err := s.audit.Log(ctx, event); err != nil {
		log.Warn().Err(err).Str("file", rec.File).Msg("audit logging failed")
	}
}

func (sel *selection) listing() Listing {
	files := make([]FileEntry, 0, len(sel.files))
	for _, f := range sel.files {
		entry := FileEntry{Path: f, Name: f}
		if d, ok := sel.decisions[f]; ok {
			decision := d
			entry.Decision = &decision
		}
		files = append(files, entry)
	}

	return Listing{
		Folder:     sel.folder,
		ResultsCSV: sel.ledger.Path(),
		Files:      files,
	}
}
