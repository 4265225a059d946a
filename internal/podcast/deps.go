package podcast

import "os"

// dirFS is the subset of os used to enumerate and create folders.
type dirFS interface {
	Stat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.DirEntry, error)
	MkdirAll(path string, perm os.FileMode) error
}

// osDirFS implements dirFS using the os package.
type osDirFS struct{}

func (osDirFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (osDirFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (osDirFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
