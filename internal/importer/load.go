package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/liga/backend/internal/contracts"
)

// LoadFile reads a snapshot from disk, picking the format by extension:
// .json, .xlsx, .html/.htm
func LoadFile(path string) (*contracts.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var snapshot *contracts.Snapshot
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		snapshot, err = DecodeSnapshot(bytes.NewReader(data))
	case ".xlsx":
		snapshot, err = ReadWorkbook(data)
	case ".html", ".htm":
		snapshot, err = ParseResultsHTML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}
