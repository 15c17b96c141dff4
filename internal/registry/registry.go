// Package registry builds the symbol table from a directory of per-symbol archive files.
//
// Files are named SYMBOL<ext> and may be grouped under subdirectories
// (e.g. one per month). The same symbol may appear in several subdirectories;
// it receives a single ID. IDs are positions in the sorted, deduplicated symbol
// list, so the same directory contents always produce the same IDs.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timcrose/sessionstore/internal/model"
)

// ErrNoDataFound is returned when the directory is missing or holds no matching files.
var ErrNoDataFound = errors.New("no data found")

// File is a single archive file and the symbol it belongs to.
type File struct {
	Path     string
	Symbol   string
	SymbolID int
}

// Registry is the deterministic symbol list and the files to ingest.
type Registry struct {
	Symbols []model.Symbol
	Files   []File // Ordered by SymbolID, then path

	ids map[string]int
}

// ID returns the identifier assigned to symbol.
func (r *Registry) ID(symbol string) (int, bool) {
	id, ok := r.ids[symbol]
	return id, ok
}

// Scan walks dir recursively and collects every regular file with extension ext.
func Scan(dir, ext string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrNoDataFound, dir)
		}
		return nil, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoDataFound, dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// A bare ".h5" has no symbol.
		if d.Type().IsRegular() && filepath.Ext(path) == ext && SymbolFromPath(path, ext) != "" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk data dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no *%s files under %s", ErrNoDataFound, ext, dir)
	}

	symbols := Symbols(paths, ext)
	r := &Registry{
		Symbols: make([]model.Symbol, len(symbols)),
		ids:     make(map[string]int, len(symbols)),
	}
	for i, s := range symbols {
		r.Symbols[i] = model.Symbol{ID: i, Symbol: s}
		r.ids[s] = i
	}

	r.Files = make([]File, len(paths))
	for i, p := range paths {
		sym := SymbolFromPath(p, ext)
		r.Files[i] = File{Path: p, Symbol: sym, SymbolID: r.ids[sym]}
	}
	sort.SliceStable(r.Files, func(i, j int) bool {
		if r.Files[i].SymbolID != r.Files[j].SymbolID {
			return r.Files[i].SymbolID < r.Files[j].SymbolID
		}
		return r.Files[i].Path < r.Files[j].Path
	})

	return r, nil
}

// Build returns the symbol table for dir without the file list.
func Build(dir, ext string) ([]model.Symbol, error) {
	r, err := Scan(dir, ext)
	if err != nil {
		return nil, err
	}
	return r.Symbols, nil
}

// Symbols derives the deduplicated, ascending symbol list from file paths.
func Symbols(paths []string, ext string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		s := SymbolFromPath(p, ext)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SymbolFromPath returns the file name of path without its extension.
func SymbolFromPath(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}
