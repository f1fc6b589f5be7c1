// Package upload reads PDF files from disk for the driving adapters that
// ingest by path, enforcing the upload limit before the bytes are loaded.
package upload

import (
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// ReadFile returns the contents of the regular file at path. Files larger
// than maxBytes are rejected with a *domain.PolicyError without being read;
// a non-positive maxBytes disables the check.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path)
	}
	if maxBytes <= 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		return data, nil
	}
	if info.Size() > maxBytes {
		return nil, domain.NewTooLargeError(info.Size(), maxBytes)
	}

	// The file may grow between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.NewTooLargeError(int64(len(data)), maxBytes)
	}
	return data, nil
}
