package audio

import (
	"io"
	"os"
)

// fileSystem abstracts the output-side filesystem operations of the segmenter.
type fileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Create(name string) (io.WriteCloser, error)
	ReadDir(name string) ([]os.DirEntry, error)
	Remove(name string) error
}

// --- Default implementation using real OS functions ---

// osFileSystem implements fileSystem using the os package.
type osFileSystem struct{}

func (osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFileSystem) Create(name string) (io.WriteCloser, error) {
	// #nosec G304 -- segment paths are built by the segmenter under the output dir
	return os.Create(name)
}

func (osFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFileSystem) Remove(name string) error {
	return os.Remove(name)
}
