// Package molecule serves the text of molecule files from inside a
// selected folder.
package molecule

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dagbolade/molselector/internal/apperr"
	"github.com/samber/oops"
)

// Molecule is the raw content of one structure file.
type Molecule struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Content  string `json:"content"`
}

// Read returns the file rel inside root. Containment is checked before
// existence so a traversal attempt is always reported as forbidden.
func Read(root, rel string) (Molecule, error) {
	path, err := Resolve(root, rel)
	if err != nil {
		return Molecule{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return Molecule{}, apperr.NotFound("Molecule file not found: %s", rel)
		}
		return Molecule{}, oops.In("molecule").With("path", path).Wrapf(err, "stat molecule")
	}
	if !info.Mode().IsRegular() {
		return Molecule{}, apperr.NotFound("Molecule file not found: %s", rel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Molecule{}, oops.In("molecule").With("path", path).Wrapf(err, "read molecule")
	}

	name := filepath.Base(filepath.Clean(rel))
	return Molecule{
		Filename: name,
		Format:   Format(name),
		Content:  strings.ToValidUTF8(string(data), "\uFFFD"),
	}, nil
}

// Format derives the viewer format tag from a file name.
func Format(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Resolve maps rel onto root and returns its canonical path, failing with
// a forbidden error when the result escapes root through "..", an
// absolute path or a symlink.
func Resolve(root, rel string) (string, error) {
	base, err := canonical(root)
	if err != nil {
		return "", oops.In("molecule").With("folder", root).Wrapf(err, "resolve folder")
	}

	candidate := rel
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	resolved, err := canonical(candidate)
	if err != nil {
		return "", oops.In("molecule").With("path", candidate).Wrapf(err, "resolve path")
	}

	if !within(base, resolved) {
		return "", apperr.Forbidden("Requested path is outside the selected folder")
	}
	return resolved, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// canonical resolves symlinks along the longest existing prefix of path
// and appends the missing remainder lexically.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) && !errors.Is(err, syscall.ENOTDIR) {
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	head, err := canonical(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(head, filepath.Base(abs)), nil
}
