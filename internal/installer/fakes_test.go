package installer

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memTree is a SourceTree backed by a map of slash paths to contents.
type memTree struct {
	files     map[string][]byte
	emptyDirs map[string]bool
	failOpen  map[string]bool
	stall     map[string]bool
	listCalls int
}

func newMemTree(files map[string]string, emptyDirs ...string) *memTree {
	t := &memTree{
		files:     make(map[string][]byte),
		emptyDirs: make(map[string]bool),
		failOpen:  make(map[string]bool),
		stall:     make(map[string]bool),
	}
	for name, content := range files {
		t.files[name] = []byte(content)
	}
	for _, d := range emptyDirs {
		t.emptyDirs[d] = true
	}
	return t
}

func (t *memTree) List(p string) ([]string, error) {
	t.listCalls++
	if _, ok := t.files[p]; ok {
		return nil, ErrNotDir
	}

	seen := make(map[string]bool)
	prefix := p + "/"
	add := func(name string) {
		if !strings.HasPrefix(name, prefix) {
			return
		}
		child, _, _ := strings.Cut(strings.TrimPrefix(name, prefix), "/")
		seen[child] = true
	}
	for name := range t.files {
		add(name)
	}
	for name := range t.emptyDirs {
		add(name)
	}

	if len(seen) == 0 && !t.emptyDirs[p] {
		return nil, ErrNotDir
	}

	children := make([]string, 0, len(seen))
	for c := range seen {
		children = append(children, c)
	}
	sort.Strings(children)
	return children, nil
}

func (t *memTree) Open(p string) (io.ReadCloser, error) {
	if t.failOpen[p] {
		return nil, errors.New("unreadable")
	}
	data, ok := t.files[p]
	if !ok {
		return nil, fs.ErrNotExist
	}
	if t.stall[p] {
		return io.NopCloser(stalledReader{}), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// stalledReader never makes progress.
type stalledReader struct{}

func (stalledReader) Read([]byte) (int, error) { return 0, nil }

// memFS is an in-memory FS that records every mutating call in order.
type memFS struct {
	dirs      map[string]bool
	files     map[string][]byte
	ops       []string
	failMkdir map[string]bool

	// failures injected by path
	failStat   map[string]error
	failCreate map[string]error
	failWrite  map[string]error
	failClose  map[string]error
}

func newMemFS() *memFS {
	return &memFS{
		dirs:      map[string]bool{"/": true, ".": true},
		files:     make(map[string][]byte),
		failMkdir: make(map[string]bool),

		failStat:   make(map[string]error),
		failCreate: make(map[string]error),
		failWrite:  make(map[string]error),
		failClose:  make(map[string]error),
	}
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	name = filepath.Clean(name)
	if err := m.failStat[name]; err != nil {
		return nil, err
	}
	if m.dirs[name] {
		return memInfo{name: filepath.Base(name), dir: true}, nil
	}
	if data, ok := m.files[name]; ok {
		return memInfo{name: filepath.Base(name), size: int64(len(data))}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *memFS) MkdirAll(name string, _ fs.FileMode) error {
	name = filepath.Clean(name)
	if m.failMkdir[name] {
		return fs.ErrPermission
	}
	m.ops = append(m.ops, "mkdir "+name)
	for p := name; !m.dirs[p]; p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

type memWriter struct {
	fs   *memFS
	name string
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	if err := w.fs.failWrite[w.name]; err != nil {
		return 0, err
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.fs.files[w.name] = w.buf.Bytes()
	return w.fs.failClose[w.name]
}

func (m *memFS) Create(name string) (io.WriteCloser, error) {
	name = filepath.Clean(name)
	if !m.dirs[filepath.Dir(name)] {
		return nil, fs.ErrNotExist
	}
	if err := m.failCreate[name]; err != nil {
		return nil, err
	}
	m.ops = append(m.ops, "create "+name)
	return &memWriter{fs: m, name: name}, nil
}

func (m *memFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	name = filepath.Clean(name)
	if !m.dirs[filepath.Dir(name)] {
		return fs.ErrNotExist
	}
	m.ops = append(m.ops, "write "+name)
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memFS) Remove(name string) error {
	name = filepath.Clean(name)
	if _, ok := m.files[name]; !ok {
		return fs.ErrNotExist
	}
	m.ops = append(m.ops, "remove "+name)
	delete(m.files, name)
	return nil
}

// relFiles returns the files under root keyed by slash path relative to root.
func (m *memFS) relFiles(root string) map[string]string {
	out := make(map[string]string)
	for name, data := range m.files {
		rel, err := filepath.Rel(root, name)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		out[path.Clean(filepath.ToSlash(rel))] = string(data)
	}
	return out
}
