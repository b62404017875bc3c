// Package bundle exposes read-only trees (embedded assets, host directories, zip
// archives) as installer source trees.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opjh/loruntime/internal/assets"
	"github.com/opjh/loruntime/internal/installer"
)

const EmbeddedName = "embedded"

// FSTree adapts an fs.FS to installer.SourceTree.
type FSTree struct {
	FS fs.FS
}

// List returns the sorted child names of name, or installer.ErrNotDir when
// name is a file or does not exist.
func (t FSTree) List(name string) ([]string, error) {
	info, err := fs.Stat(t.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, installer.ErrNotDir
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, installer.ErrNotDir
	}

	entries, err := fs.ReadDir(t.FS, name)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (t FSTree) Open(name string) (io.ReadCloser, error) {
	return t.FS.Open(name)
}

// Bundle is an opened source tree. Close releases archive handles, if any.
type Bundle struct {
	FSTree
	Name   string
	closer io.Closer
}

func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Embedded returns the tree compiled into the binary.
func Embedded() *Bundle {
	sub, err := fs.Sub(assets.Bundle, assets.BundleDir)
	if err != nil {
		// fs.Sub only fails on an invalid path, and BundleDir is a constant.
		panic(err)
	}
	return &Bundle{FSTree: FSTree{FS: sub}, Name: EmbeddedName}
}

// Dir returns the tree rooted at a host directory.
func Dir(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open bundle dir: %s is not a directory", path)
	}
	return &Bundle{FSTree: FSTree{FS: os.DirFS(path)}, Name: path}, nil
}

// Zip returns the tree stored in a zip archive.
func Zip(path string) (*Bundle, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle archive: %w", err)
	}
	return &Bundle{FSTree: FSTree{FS: rc}, Name: path, closer: rc}, nil
}

// Open resolves a source: empty or "embedded" selects the embedded tree,
// a path ending in .zip an archive, anything else a directory.
func Open(source string) (*Bundle, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "" || source == EmbeddedName:
		return Embedded(), nil
	case strings.EqualFold(filepath.Ext(source), ".zip"):
		return Zip(source)
	default:
		return Dir(source)
	}
}

