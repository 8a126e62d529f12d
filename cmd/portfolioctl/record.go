package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolioX/internal/portfolio"
)

// loadRecord reads a record from path ("-" for stdin). The format comes from
// the flag, then the file extension, and defaults to JSON.
func loadRecord(path, format string, stdin io.Reader) (portfolio.Record, error) {
	var record portfolio.Record

	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return record, fmt.Errorf("read record: %w", err)
	}

	switch resolveFormat(path, format) {
	case "yaml":
		if err := yaml.Unmarshal(data, &record); err != nil {
			return record, fmt.Errorf("decode yaml record: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &record); err != nil {
			return record, fmt.Errorf("decode json record: %w", err)
		}
	default:
		return record, fmt.Errorf("unsupported record format %q", format)
	}
	return record, nil
}

func resolveFormat(path, format string) string {
	if f := strings.ToLower(strings.TrimSpace(format)); f != "" {
		if f == "yml" {
			return "yaml"
		}
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func writeSample(w io.Writer, format string) error {
	record := portfolio.DefaultRecord()
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
