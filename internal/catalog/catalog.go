package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/dagbolade/molselector/internal/apperr"
	"github.com/elliotchance/pie/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
)

// SupportedExtensions lists the molecule formats the viewer can render.
var SupportedExtensions = []string{".xyz", ".mol2", ".mol", ".sdf", ".pdb", ".cif", ".pqr", ".gro"}

// Folder is the result of scanning a directory for molecule files.
type Folder struct {
	Path  string
	Files []string
}

// Scan validates dir and lists the supported files directly inside it.
func Scan(dir string) (Folder, error) {
	path, err := normalizePath(dir)
	if err != nil {
		return Folder{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return Folder{}, apperr.NotFound("Folder not found: %s", dir)
		}
		return Folder{}, oops.In("catalog").With("folder", path).Wrapf(err, "stat folder")
	}
	if !info.IsDir() {
		return Folder{}, apperr.NotFound("Folder not found: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Folder{}, oops.In("catalog").With("folder", path).Wrapf(err, "read folder")
	}

	files := pie.Map(
		pie.Filter(entries, func(entry os.DirEntry) bool {
			return isSupportedFile(path, entry)
		}),
		func(entry os.DirEntry) string { return entry.Name() },
	)
	SortNames(files)

	log.Debug().Str("folder", path).Int("files", len(files)).Int("entries", len(entries)).Msg("folder scanned")

	return Folder{Path: path, Files: files}, nil
}

// SortNames orders names case-insensitively, breaking ties by byte order.
func SortNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// IsSupported reports whether name carries an allow-listed extension.
func IsSupported(name string) bool {
	return pie.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

func isSupportedFile(dir string, entry os.DirEntry) bool {
	if entry.IsDir() || !IsSupported(entry.Name()) {
		return false
	}
	if entry.Type().IsRegular() {
		return true
	}

	// symlinks and other special entries count only when they resolve to a file
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func normalizePath(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", apperr.Validation("Folder path is required")
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", oops.In("catalog").Wrapf(err, "resolve home directory")
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", oops.In("catalog").With("folder", dir).Wrapf(err, "resolve folder")
	}
	return abs, nil
}
