package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Common errors for trace loading.
var (
	ErrFileNotFound     = errors.New("trace file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidTrace     = errors.New("invalid HAR document")
	ErrEmptyFile        = errors.New("trace file is empty")
)

// LoadFromFile reads a HAR trace from a JSON file. All entries are
// prepared for matching; a trace that cannot be parsed is a fatal error,
// the server must not start without a usable trace.
func LoadFromFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return Parse(data)
}

// Parse parses HAR JSON bytes and prepares every entry for matching.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, err)
	}
	for i, e := range f.Log.Entries {
		if e == nil {
			return nil, fmt.Errorf("%w: entry %d is null", ErrInvalidTrace, i)
		}
		if err := e.prepare(); err != nil {
			return nil, fmt.Errorf("%w: entry %d has unparseable URL %q: %v", ErrInvalidTrace, i, e.Request.URL, err)
		}
	}
	return &f, nil
}

// LoadEntriesFromFile is a convenience function that loads a trace and
// returns just its entries in capture order.
func LoadEntriesFromFile(path string) ([]*Entry, error) {
	f, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return f.Log.Entries, nil
}
