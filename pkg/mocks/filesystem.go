package mocks

import (
	"bytes"
	"fmt"
	iofs "io/fs"
	"sync"

	"github.com/user/yuvplay/pkg/ports"
)

// FileSystem is an in-memory implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
	MkdirAllFunc  func(path string) error
	ExistsFunc    func(path string) (bool, error)
	SizeFunc      func(path string) (int64, error)
	OpenFunc      func(path string) (ports.File, error)

	// OpenCount counts successful Open calls.
	OpenCount int
	// Closed counts Close calls on files returned by Open.
	Closed int
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func notFound(path string) error {
	return fmt.Errorf("%s: %w", path, iofs.ErrNotExist)
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return data, nil
	}
	return nil, notFound(path)
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	if _, ok := m.dirs[path]; ok {
		return true, nil
	}
	return false, nil
}

func (m *FileSystem) Size(path string) (int64, error) {
	if m.SizeFunc != nil {
		return m.SizeFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return int64(len(data)), nil
	}
	return 0, notFound(path)
}

func (m *FileSystem) Open(path string) (ports.File, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, notFound(path)
	}
	m.OpenCount++
	return &memFile{Reader: bytes.NewReader(data), fs: m}, nil
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}

// GetAllFiles returns all files (for test verification).
func (m *FileSystem) GetAllFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte)
	for k, v := range m.files {
		result[k] = v
	}
	return result
}

// OpenFiles returns the number of opened files not yet closed.
func (m *FileSystem) OpenFiles() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.OpenCount - m.Closed
}

type memFile struct {
	*bytes.Reader
	fs     *FileSystem
	closed bool
}

func (f *memFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.fs.mu.Lock()
	f.fs.Closed++
	f.fs.mu.Unlock()
	return nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
