package installer

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// FS is the filesystem capability the installer writes through.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(name string, perm fs.FileMode) error
	Create(name string) (io.WriteCloser, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Remove(name string) error
}

// OSFS writes to the host filesystem.
type OSFS struct{}

func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (OSFS) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }

func (OSFS) Create(name string) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

func (OSFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFS) Remove(name string) error { return os.Remove(name) }

func exists(fsys FS, name string) bool {
	ok, _ := present(fsys, name)
	return ok
}

// present reports whether name exists. Only fs.ErrNotExist counts as absent;
// other Stat errors are returned.
func present(fsys FS, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
