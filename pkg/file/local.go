package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ReadLocal reads path, refusing directories and files over maxBytes.
// maxBytes <= 0 disables the limit.
func ReadLocal(ctx context.Context, path string, maxBytes int64) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, ErrEmptyReference
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if err := ValidateSize(info.Size(), maxBytes); err != nil {
		return nil, err
	}

	data, err := readLimited(f, maxBytes)
	if err != nil {
		return nil, err
	}
	return newBlob(info.Name(), data), nil
}

// readLimited reads r fully, failing once more than maxBytes arrive.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if err := ValidateSize(int64(len(data)), maxBytes); err != nil {
		return nil, err
	}
	return data, nil
}
