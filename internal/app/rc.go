package app

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/opjh/loruntime/internal/installer"
)

// RenderRC builds the [Bootstrap] section that points the runtime at its
// installed program directory and at the cache used as HOME.
func RenderRC(layout Layout, logo, nativeProgress bool) string {
	fundamental := fileURL(filepath.Join(layout.ProgramDir(), "fundamentalrc"))
	cache := absPath(layout.CacheDir())

	var b strings.Builder
	b.WriteString("[Bootstrap]\n")
	fmt.Fprintf(&b, "Logo=%s\n", flag(logo))
	fmt.Fprintf(&b, "NativeProgress=%s\n", flag(nativeProgress))
	fmt.Fprintf(&b, "URE_BOOTSTRAP=%s\n", fundamental)
	fmt.Fprintf(&b, "HOME=%s\n", cache)
	fmt.Fprintf(&b, "OSL_SOCKET_PATH=%s\n", cache)
	return b.String()
}

func (r *Runtime) writeRC() (string, error) {
	path := r.Layout.RCPath()
	fsys := r.fs()

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, &installer.InstallError{Op: installer.OpMkdir, Path: filepath.Dir(path), Err: err}
	}

	content := RenderRC(r.Layout, r.Options.Logo, r.Options.NativeProgress)
	if err := fsys.WriteFile(path, []byte(content), 0o644); err != nil {
		return path, &installer.InstallError{Op: installer.OpWrite, Path: path, Err: err}
	}

	r.logger().Info("wrote bootstrap rc", "path", path)
	return path, nil
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath(path))}
	return u.String()
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
