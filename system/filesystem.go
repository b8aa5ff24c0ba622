// Package system abstracts the file system and HTTP access used to load referenced documents.
package system

import (
	"io/fs"
	"net/http"
	"os"
)

// VirtualFS opens referenced files. Names are the locations computed while resolving references,
// which may be absolute paths.
type VirtualFS interface {
	fs.FS
}

// Client fetches referenced documents over HTTP. *http.Client satisfies it.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Client = (*http.Client)(nil)

// FileSystem is the VirtualFS of the operating system.
type FileSystem struct{}

var _ VirtualFS = (*FileSystem)(nil)

func (fs *FileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads a whole file from fsys.
func ReadFile(fsys VirtualFS, name string) ([]byte, error) {
	if fsys == nil {
		fsys = &FileSystem{}
	}
	if _, ok := fsys.(*FileSystem); ok {
		return os.ReadFile(name)
	}
	return fs.ReadFile(fsys, name)
}
