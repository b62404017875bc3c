// Package app installs the runtime layout: every configured tree from the source
// bundle, each behind its own marker, followed by the bootstrap rc file.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/opjh/loruntime/internal/config"
	"github.com/opjh/loruntime/internal/installer"
)

// Tree maps a root in the source bundle to a directory relative to the layout root.
type Tree struct {
	Root string
	Dest string
}

type Options struct {
	Marker         string
	BufferSize     int
	EmptyDirs      installer.EmptyDirPolicy
	SkipExisting   bool
	WriteRC        bool
	Logo           bool
	NativeProgress bool
}

type Runtime struct {
	Layout   Layout
	Trees    []Tree
	Source   installer.SourceTree
	FS       installer.FS
	Required []string
	Options  Options
	Logger   *slog.Logger
}

type TreeResult struct {
	Tree   Tree
	Dest   string
	Report installer.Report
}

type Summary struct {
	Trees  []TreeResult
	RCPath string
}

// Installed reports whether every tree was already in place before the call.
func (s Summary) Installed() bool {
	for _, t := range s.Trees {
		if !t.Report.Skipped {
			return false
		}
	}
	return true
}

// NewRuntime builds a Runtime from configuration and an opened source tree.
func NewRuntime(cfg config.Config, source installer.SourceTree, logger *slog.Logger) (*Runtime, error) {
	policy, err := installer.ParseEmptyDirPolicy(cfg.Install.EmptyDirs)
	if err != nil {
		return nil, err
	}

	trees := make([]Tree, 0, len(cfg.Trees))
	for _, t := range cfg.Trees {
		trees = append(trees, Tree{Root: t.Root, Dest: t.Dest})
	}

	return &Runtime{
		Layout:   Layout{Root: cfg.RuntimeDir},
		Trees:    trees,
		Source:   source,
		FS:       installer.OSFS{},
		Required: cfg.RequiredFiles,
		Options: Options{
			Marker:         cfg.Install.Marker,
			BufferSize:     cfg.Install.BufferSize,
			EmptyDirs:      policy,
			SkipExisting:   cfg.Install.SkipExisting,
			WriteRC:        cfg.Bootstrap.WriteRC,
			Logo:           cfg.Bootstrap.Logo,
			NativeProgress: cfg.Bootstrap.NativeProgress,
		},
		Logger: logger,
	}, nil
}

// Install creates the layout directories, installs each tree in order and
// writes the bootstrap rc. The first failure stops the run.
func (r *Runtime) Install() (Summary, error) {
	var summary Summary
	fsys := r.fs()

	for _, dir := range r.Layout.Dirs() {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return summary, &installer.InstallError{Op: installer.OpMkdir, Path: dir, Err: err}
		}
	}

	for _, tree := range r.Trees {
		dest := r.Layout.Path(tree.Dest)
		report, err := r.installerFor(tree).EnsureInstalled(dest)
		summary.Trees = append(summary.Trees, TreeResult{Tree: tree, Dest: dest, Report: report})
		if err != nil {
			return summary, fmt.Errorf("install %s: %w", tree.Root, err)
		}
	}

	if !r.Options.WriteRC {
		return summary, nil
	}

	if summary.Installed() && exists(fsys, r.Layout.RCPath()) {
		summary.RCPath = r.Layout.RCPath()
		return summary, nil
	}

	path, err := r.writeRC()
	summary.RCPath = path
	if err != nil {
		return summary, fmt.Errorf("write bootstrap rc: %w", err)
	}

	return summary, nil
}

type TreeStatus struct {
	Tree      Tree
	Dest      string
	Installed bool
}

type FileStatus struct {
	Path    string
	Present bool
}

type Status struct {
	Root  string
	Trees []TreeStatus
	Files []FileStatus
	RC    *FileStatus
}

// Ready reports whether every marker, required file and the rc file are present.
func (s Status) Ready() bool {
	for _, t := range s.Trees {
		if !t.Installed {
			return false
		}
	}
	for _, f := range s.Files {
		if !f.Present {
			return false
		}
	}
	return s.RC == nil || s.RC.Present
}

// Status inspects markers and required files without touching the source tree.
func (r *Runtime) Status() Status {
	fsys := r.fs()
	status := Status{Root: r.Layout.Root}

	for _, tree := range r.Trees {
		dest := r.Layout.Path(tree.Dest)
		status.Trees = append(status.Trees, TreeStatus{
			Tree:      tree,
			Dest:      dest,
			Installed: r.installerFor(tree).Installed(dest),
		})
	}

	for _, rel := range r.Required {
		path := r.Layout.Path(rel)
		status.Files = append(status.Files, FileStatus{Path: path, Present: exists(fsys, path)})
	}

	if r.Options.WriteRC {
		path := r.Layout.RCPath()
		status.RC = &FileStatus{Path: path, Present: exists(fsys, path)}
	}

	return status
}

// Reset removes the tree markers so the next Install copies everything again.
// Installed files are left in place and overwritten by that copy.
func (r *Runtime) Reset() (int, error) {
	fsys := r.fs()
	removed := 0

	for _, tree := range r.Trees {
		marker := r.installerFor(tree).MarkerPath(r.Layout.Path(tree.Dest))
		err := fsys.Remove(marker)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("remove marker %s: %w", marker, err)
		}
		removed++
		r.logger().Info("removed marker", "path", marker)
	}

	return removed, nil
}

func (r *Runtime) installerFor(tree Tree) *installer.Installer {
	return &installer.Installer{
		Source:       r.Source,
		FS:           r.fs(),
		Root:         tree.Root,
		Marker:       r.Options.Marker,
		BufferSize:   r.Options.BufferSize,
		EmptyDirs:    r.Options.EmptyDirs,
		SkipExisting: r.Options.SkipExisting,
		Logger:       r.logger().With("tree", tree.Root),
	}
}

func (r *Runtime) fs() installer.FS {
	if r.FS == nil {
		return installer.OSFS{}
	}
	return r.FS
}

func (r *Runtime) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func exists(fsys installer.FS, path string) bool {
	_, err := fsys.Stat(filepath.Clean(path))
	return err == nil
}
