package app

import "path/filepath"

// Layout names the directories of an installed runtime.
type Layout struct {
	Root string
}

func (l Layout) ProgramDir() string { return filepath.Join(l.Root, "program") }

func (l Layout) ShareDir() string { return filepath.Join(l.Root, "share") }

func (l Layout) CacheDir() string { return filepath.Join(l.Root, "cache") }

// RCPath is the bootstrap rc file read by the runtime on start.
func (l Layout) RCPath() string { return filepath.Join(l.ProgramDir(), "sofficerc") }

// Path resolves a slash-separated path relative to the root.
func (l Layout) Path(rel string) string {
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// Dirs lists the directories created before any tree is installed.
func (l Layout) Dirs() []string {
	return []string{l.Root, l.ProgramDir(), l.ShareDir(), l.CacheDir()}
}
