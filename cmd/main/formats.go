package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/alekratz/markovgen/pkg/markov"
)

// fileFormats lists the chain-file extensions the CLI knows how to read and
// write, with a short description for help output.
var fileFormats = []struct {
	ext  string
	desc string
}{
	{"json", "indented JSON chain export"},
	{"cbor", "CBOR, Concise Binary Object Representation"},
	{"db", "SQLite database of named models"},
	{"sqlite", "SQLite database of named models"},
}

// formatTable renders the known formats for usage text.
func formatTable() string {
	var b strings.Builder
	for _, f := range fileFormats {
		fmt.Fprintf(&b, "  .%-7s - %s\n", f.ext, f.desc)
	}
	return b.String()
}

// knownExtensions returns the extension list for error messages.
func knownExtensions() string {
	exts := make([]string, len(fileFormats))
	for i, f := range fileFormats {
		exts[i] = f.ext
	}
	return strings.Join(exts, " ")
}

// chainExt extracts a path's extension and reports whether it names a known
// chain format.
func chainExt(path string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, f := range fileFormats {
		if f.ext == ext {
			return ext, true
		}
	}
	return ext, false
}

// requireChainExt exits unless path carries a known chain extension.
func requireChainExt(path string) string {
	ext, ok := chainExt(path)
	if !ok {
		exitErrf("no known strategy to read file %q. Known extensions: %s", path, knownExtensions())
	}
	return ext
}

// isSQLite reports whether the extension selects the database-backed format.
func isSQLite(ext string) bool {
	return ext == "db" || ext == "sqlite"
}

// loadChainFile reads a chain from path, selecting the codec by extension.
// For SQLite files, model selects which stored chain to load.
func loadChainFile(ctx context.Context, path, model string) (*markov.Chain[string], error) {
	ext := requireChainExt(path)
	if isSQLite(ext) {
		db, err := openDB(path)
		if err != nil {
			return nil, fmt.Errorf("could not open database %q: %w", path, err)
		}
		defer func() { _ = db.Close() }()
		if err = markov.SetupSchema(db); err != nil {
			return nil, fmt.Errorf("could not prepare database %q: %w", path, err)
		}
		return markov.LoadChain(ctx, db, model)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if ext == "cbor" {
		return markov.ImportCBOR[string](f)
	}
	return markov.ImportJSON[string](f)
}

// saveChainFile writes a chain to path, selecting the codec by extension.
// Flat files are replaced atomically; SQLite writes replace the named model
// in one transaction.
func saveChainFile(ctx context.Context, path, model string, c *markov.Chain[string]) error {
	ext := requireChainExt(path)
	if isSQLite(ext) {
		db, err := openDB(path)
		if err != nil {
			return fmt.Errorf("could not open database %q: %w", path, err)
		}
		defer func() { _ = db.Close() }()
		if err = markov.SetupSchema(db); err != nil {
			return fmt.Errorf("could not prepare database %q: %w", path, err)
		}
		return markov.StoreChain(ctx, db, model, c)
	}

	var buf bytes.Buffer
	var err error
	if ext == "cbor" {
		err = c.ExportCBOR(&buf)
	} else {
		err = c.ExportJSON(&buf)
	}
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}
