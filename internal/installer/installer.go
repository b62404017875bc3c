// Package installer copies a read-only source tree into a writable directory once,
// gated by a marker file.
package installer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
)

const (
	DefaultRoot       = "program"
	DefaultMarker     = ".installed"
	DefaultBufferSize = 1024 * 1024

	markerContent = "ok"

	maxEmptyReads = 100
)

var errEmptyDir = errors.New("empty directory has no content to copy")

// SourceTree is a read-only hierarchy addressed by slash-separated paths.
// List returns ErrNotDir for entries that are not directories.
type SourceTree interface {
	List(path string) ([]string, error)
	Open(path string) (io.ReadCloser, error)
}

// EmptyDirPolicy decides what happens to source directories without children.
type EmptyDirPolicy int

const (
	// EmptyDirCreate creates the directory at the destination and moves on.
	EmptyDirCreate EmptyDirPolicy = iota
	// EmptyDirFail aborts the copy with a read failure on the directory,
	// before anything is created for it at the destination.
	EmptyDirFail
)

func (p EmptyDirPolicy) String() string {
	if p == EmptyDirFail {
		return "fail"
	}
	return "create"
}

func ParseEmptyDirPolicy(s string) (EmptyDirPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "create":
		return EmptyDirCreate, nil
	case "fail":
		return EmptyDirFail, nil
	default:
		return EmptyDirCreate, fmt.Errorf("unknown empty dir policy %q", s)
	}
}

// Report summarizes one EnsureInstalled call.
type Report struct {
	Skipped bool
	Dirs    int
	Files   int
	Bytes   int64
}

type Installer struct {
	Source       SourceTree
	FS           FS
	Root         string
	Marker       string
	BufferSize   int
	EmptyDirs    EmptyDirPolicy
	SkipExisting bool
	Logger       *slog.Logger
}

// MarkerPath returns the marker location for dest.
func (in *Installer) MarkerPath(dest string) string {
	return filepath.Join(dest, in.marker())
}

// Installed reports whether the marker for dest exists.
func (in *Installer) Installed(dest string) bool {
	return exists(in.fs(), in.MarkerPath(dest))
}

// EnsureInstalled copies the source tree under Root into dest unless the marker
// is already present, then writes the marker. The first failure aborts the copy
// and leaves whatever was written in place, without a marker.
func (in *Installer) EnsureInstalled(dest string) (Report, error) {
	fsys := in.fs()
	logger := in.logger()
	marker := in.MarkerPath(dest)

	installed, err := present(fsys, marker)
	if err != nil {
		return Report{}, failed(OpRead, marker, err)
	}
	if installed {
		logger.Debug("tree already installed", "dest", dest, "marker", marker)
		return Report{Skipped: true}, nil
	}

	if in.Source == nil {
		return Report{}, failed(OpList, in.root(), errors.New("no source tree"))
	}

	if !exists(fsys, dest) {
		if err := fsys.MkdirAll(dest, 0o755); err != nil {
			return Report{}, failed(OpMkdir, dest, err)
		}
	}

	logger.Info("installing tree", "root", in.root(), "dest", dest)

	report, err := in.copyTree(dest)
	if err != nil {
		logger.Warn("install aborted", "dest", dest, "error", err)
		return report, err
	}

	if err := fsys.WriteFile(marker, []byte(markerContent), 0o644); err != nil {
		return report, failed(OpWrite, marker, err)
	}

	logger.Info("tree installed",
		"dest", dest, "dirs", report.Dirs, "files", report.Files, "bytes", report.Bytes)
	return report, nil
}

func (in *Installer) copyTree(dest string) (Report, error) {
	var report Report

	fsys := in.fs()
	root := in.root()
	buf := make([]byte, in.bufferSize())
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := in.Source.List(current)
		if errors.Is(err, ErrNotDir) {
			if err := in.copyLeaf(current, in.leafTarget(dest, current), buf, &report); err != nil {
				return report, err
			}
			continue
		}
		if err != nil {
			return report, failed(OpList, current, err)
		}

		if len(children) == 0 && in.EmptyDirs == EmptyDirFail {
			return report, failed(OpRead, current, errEmptyDir)
		}

		dir := in.dirTarget(dest, current)
		if !exists(fsys, dir) {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return report, failed(OpMkdir, dir, err)
			}
			report.Dirs++
		}

		for _, name := range children {
			queue = append(queue, childPath(current, name))
		}
	}

	return report, nil
}

func (in *Installer) copyLeaf(src, dst string, buf []byte, report *Report) error {
	fsys := in.fs()

	if in.SkipExisting {
		if info, err := fsys.Stat(dst); err == nil && !info.IsDir() && info.Size() > 0 {
			in.logger().Debug("keeping existing file", "path", dst)
			return nil
		}
	}

	parent := filepath.Dir(dst)
	if !exists(fsys, parent) {
		if err := fsys.MkdirAll(parent, 0o755); err != nil {
			return failed(OpMkdir, parent, err)
		}
	}

	r, err := in.Source.Open(src)
	if err != nil {
		return failed(OpRead, src, err)
	}
	defer r.Close()

	w, err := fsys.Create(dst)
	if err != nil {
		return failed(OpWrite, dst, err)
	}

	n, err := stream(w, r, buf, src, dst)
	if closeErr := w.Close(); err == nil && closeErr != nil {
		err = failed(OpWrite, dst, closeErr)
	}
	if err != nil {
		return err
	}

	report.Files++
	report.Bytes += n
	in.logger().Debug("copied file", "src", src, "dst", dst, "bytes", n)
	return nil
}

// stream copies r to w through buf, attributing failures to the side that produced them.
func stream(w io.Writer, r io.Reader, buf []byte, src, dst string) (int64, error) {
	var written int64
	empty := 0
	for {
		nr, readErr := r.Read(buf)
		if nr == 0 && readErr == nil {
			empty++
			if empty >= maxEmptyReads {
				return written, failed(OpRead, src, io.ErrNoProgress)
			}
			continue
		}
		empty = 0
		if nr > 0 {
			nw, writeErr := w.Write(buf[:nr])
			written += int64(nw)
			if writeErr != nil {
				return written, failed(OpWrite, dst, writeErr)
			}
			if nw != nr {
				return written, failed(OpWrite, dst, io.ErrShortWrite)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, failed(OpRead, src, readErr)
		}
	}
}

func (in *Installer) dirTarget(dest, p string) string {
	rel := relPath(in.root(), p)
	if rel == "" {
		return dest
	}
	return filepath.Join(dest, filepath.FromSlash(rel))
}

func (in *Installer) leafTarget(dest, p string) string {
	rel := relPath(in.root(), p)
	if rel == "" {
		rel = path.Base(p)
	}
	return filepath.Join(dest, filepath.FromSlash(rel))
}

func relPath(root, p string) string {
	if root == "." {
		if p == "." {
			return ""
		}
		return p
	}
	rel := strings.TrimPrefix(p, root)
	return strings.TrimPrefix(rel, "/")
}

func childPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return parent + "/" + name
}

func (in *Installer) fs() FS {
	if in.FS == nil {
		return OSFS{}
	}
	return in.FS
}

func (in *Installer) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

func (in *Installer) root() string {
	if in.Root == "" {
		return DefaultRoot
	}
	return strings.TrimSuffix(in.Root, "/")
}

func (in *Installer) marker() string {
	if in.Marker == "" {
		return DefaultMarker
	}
	return in.Marker
}

func (in *Installer) bufferSize() int {
	if in.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return in.BufferSize
}
