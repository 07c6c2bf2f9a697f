package assets

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Frontend returns the built frontend rooted at dir, or nil when dir has no
// index.html (frontend not built).
func Frontend(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(filepath.Join(dir, "index.html")); err != nil || info.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}

// HasFrontend reports whether dir holds a built frontend
func HasFrontend(dir string) bool {
	return Frontend(dir) != nil
}
