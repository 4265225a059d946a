package download

import (
	"io/fs"
	"net/http"
	"os"
)

// httpDoer executes HTTP requests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// fileSystem abstracts the writes Download performs.
type fileSystem interface {
	MkdirAll(path string, perm fs.FileMode) error
	CreateTemp(dir, pattern string) (*os.File, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

type osFileSystem struct{}

func (osFileSystem) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFileSystem) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}
func (osFileSystem) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (osFileSystem) Remove(name string) error             { return os.Remove(name) }
