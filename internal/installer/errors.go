package installer

import (
	"errors"
	"fmt"
)

// ErrInstallFailed matches every error returned by EnsureInstalled when the copy did not complete.
var ErrInstallFailed = errors.New("installation failed")

// ErrNotDir is returned by SourceTree.List for paths that are not directories.
var ErrNotDir = errors.New("not a directory")

// Op names the step that failed.
type Op int

const (
	OpMkdir Op = iota + 1
	OpList
	OpRead
	OpWrite
)

func (op Op) String() string {
	switch op {
	case OpMkdir:
		return "mkdir"
	case OpList:
		return "list"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "unknown"
	}
}

// InstallError carries the failing operation and path.
type InstallError struct {
	Op   Op
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrInstallFailed, e.Op, e.Path, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

func (e *InstallError) Is(target error) bool { return target == ErrInstallFailed }

func failed(op Op, path string, err error) error {
	return &InstallError{Op: op, Path: path, Err: err}
}
