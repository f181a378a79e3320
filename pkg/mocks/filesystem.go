package mocks

import (
	"os"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// FileSystem is an in-memory mock implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (fs *FileSystem) WriteFile(path string, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = data
	return nil
}

func (fs *FileSystem) MkdirAll(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	return nil
}

func (fs *FileSystem) Exists(path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; ok {
		return true, nil
	}
	return fs.dirs[path], nil
}

// FileCount returns the number of stored files.
func (fs *FileSystem) FileCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.files)
}

var _ ports.FileSystem = (*FileSystem)(nil)
