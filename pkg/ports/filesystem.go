package ports

import "io"

// File is an open read-only file.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it and its parents if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Size returns the size of a file in bytes.
	Size(path string) (int64, error)

	// Open opens a file for reading.
	Open(path string) (File, error)
}
