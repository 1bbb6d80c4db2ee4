// Package export serializes profile reports to the formats the CLI writes.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"github.com/KaramelBytes/tabprofile/internal/utils"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// ErrNotDecodable is returned when decoding a format that is write-only.
var ErrNotDecodable = errors.New("format cannot be decoded")

// ParseFormat accepts the format names and their common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use markdown, json or yaml)", s)
}

// Ext is the file extension written for the format.
func (f Format) Ext() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return "md"
}

// Encode renders a report. Numbers are written as plain JSON/YAML numbers.
func Encode(r *analysis.Report, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return []byte(r.Markdown()), nil
	case JSON:
		return utils.PrettyJSON(r)
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("encode: unknown format %q", f)
}

// Decode parses a report written by Encode.
func Decode(data []byte, f Format) (*analysis.Report, error) {
	var r analysis.Report
	switch f {
	case JSON:
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode %s: %w", f, ErrNotDecodable)
	}
	normalizeSamples(&r.Samples)
	return &r, nil
}

// WriteFile encodes r and writes it atomically to path.
func WriteFile(r *analysis.Report, f Format, path string) error {
	b, err := Encode(r, f)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// normalizeSamples maps decoded sample cells back to float64, string or
// nil. YAML yields int for whole numbers.
func normalizeSamples(s *analysis.SampleViews) {
	for _, view := range []*analysis.Sample{&s.Head, &s.Tail, &s.Random} {
		for _, row := range view.Rows {
			for i, v := range row {
				switch n := v.(type) {
				case int:
					row[i] = float64(n)
				case int64:
					row[i] = float64(n)
				case uint64:
					row[i] = float64(n)
				}
			}
		}
	}
}
