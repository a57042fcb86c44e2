package logfile

import (
	"fmt"
	"os"
)

// File is a decoder over an opened log file
type File struct {
	*Decoder
	f *os.File
}

// Open opens path and reads its catalog
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	dec, err := NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Decoder: dec, f: f}, nil
}

// Close closes the underlying file
func (f *File) Close() error {
	return f.f.Close()
}
