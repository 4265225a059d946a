package ffmpeg

import (
	"net/http"
	"os"
	"os/exec"
)

// fileReader is the read side of the filesystem used by Resolver.
type fileReader interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

// fileWriter is the write side of the filesystem used when installing ffmpeg.
type fileWriter interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
	Chmod(name string, mode os.FileMode) error
	CreateTemp(dir, pattern string) (*os.File, error)
}

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// envProvider looks up environment variables, the home directory and PATH entries.
type envProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
	LookPath(file string) (string, error)
}

var (
	_ fileReader  = osFS{}
	_ fileWriter  = osFS{}
	_ envProvider = osEnv{}
)

// osFS delegates to the os package.
type osFS struct{}

func (osFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (osFS) ReadFile(name string) ([]byte, error) {
	// #nosec G304 -- paths are built from the install directory
	return os.ReadFile(name)
}

func (osFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (osFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Remove(name string) error                    { return os.Remove(name) }
func (osFS) Chmod(name string, mode os.FileMode) error   { return os.Chmod(name, mode) }

func (osFS) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

// osEnv delegates to os and os/exec.
type osEnv struct{}

func (osEnv) Getenv(key string) string             { return os.Getenv(key) }
func (osEnv) UserHomeDir() (string, error)         { return os.UserHomeDir() }
func (osEnv) LookPath(file string) (string, error) { return exec.LookPath(file) }
