// Package loader turns sample files on disk into in-memory tables.
package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/rs/zerolog"
)

// Options controls how files are read.
type Options struct {
	// Delimiter for delimited text. If 0, sniffed from the header line.
	Delimiter rune
	// DecimalSeparator and ThousandsSeparator rewrite locale-formatted
	// numbers ("1.000,5") into plain ones before type inference. 0 leaves
	// cells untouched.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	Logger  *zerolog.Logger
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Loader reads one family of file formats.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Supported reports whether some registered loader accepts path.
func Supported(path string) bool {
	for _, l := range registry {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

// Load picks a loader by file extension and reads the file. Unsupported
// extensions are rejected before the file is opened.
func Load(path string, opt Options) (*table.Table, error) {
	var chosen Loader
	for _, l := range registry {
		if l.CanLoad(path) {
			chosen = l
			break
		}
	}
	if chosen == nil {
		return nil, &table.UnsupportedFormatError{Path: path, Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &table.NotFoundError{Path: path}
		}
		return nil, &table.NotFoundError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &table.NotFoundError{Path: path, Err: errors.New("is a directory")}
	}
	t, err := chosen.Load(path, opt)
	if err != nil {
		return nil, err
	}
	log := opt.logger()
	log.Debug().Str("file", path).Int("rows", t.Rows()).Int("columns", len(t.Columns)).Msg("table loaded")
	return t, nil
}

// normalizeRow rewrites locale-formatted numeric cells in place.
func normalizeRow(row []string, opt Options) []string {
	if opt.DecimalSeparator == 0 && opt.ThousandsSeparator == 0 {
		return row
	}
	for i, v := range row {
		if f, ok := parseLocaleNumber(v, opt.DecimalSeparator, opt.ThousandsSeparator); ok {
			row[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return row
}

// parseLocaleNumber parses s using the given separators. A zero decimal
// separator means '.'.
func parseLocaleNumber(s string, dec, thou rune) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	if dec == 0 {
		dec = '.'
	}
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
