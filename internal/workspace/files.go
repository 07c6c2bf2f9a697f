package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
)

// BinaryPlaceholder is returned by Read for content that is not valid UTF-8
const BinaryPlaceholder = "<< Binary File >>"

// skippedDirs are never listed or archived
var skippedDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Files performs path-scoped file operations inside one workspace root.
// Every client path is checked lexically with Join first, then handed to a
// billy filesystem bound to the root so symlinks cannot lead outside either.
type Files struct {
	root string
	fs   billy.Filesystem
}

// NewFiles creates a file service for the workspace at root
func NewFiles(root string) *Files {
	return &Files{
		root: root,
		fs:   osfs.New(root, osfs.WithBoundOS()),
	}
}

// Root returns the workspace directory
func (f *Files) Root() string {
	return f.root
}

// rel validates a client path and returns it relative to the root
func (f *Files) rel(path string) (string, error) {
	full, err := Join(f.root, path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(f.root, full)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	return rel, nil
}

// List returns every regular file under the root as sorted relative paths,
// skipping dotfiles, VCS internals and dependency/build directories.
// A missing workspace lists as empty.
func (f *Files) List() ([]string, error) {
	if _, err := os.Stat(f.root); errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}

	files := []string{}
	err := util.Walk(f.fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if info.IsDir() {
			if skipName(info.Name(), true) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipName(info.Name(), false) || !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func skipName(name string, dir bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return dir && skippedDirs[name]
}

// Read returns the file content, or BinaryPlaceholder when it is not text
func (f *Files) Read(path string) (string, error) {
	rel, err := f.rel(path)
	if err != nil {
		return "", err
	}

	info, err := f.fs.Stat(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	data, err := util.ReadFile(f.fs, rel)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return BinaryPlaceholder, nil
	}
	return string(data), nil
}

// Write creates or truncates the file, creating parent directories as needed
func (f *Files) Write(path, content string) error {
	rel, err := f.rel(path)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("%w: cannot write to workspace root", ErrAccessDenied)
	}

	if err := f.fs.MkdirAll(filepath.Dir(rel), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", path, err)
	}
	if err := util.WriteFile(f.fs, rel, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Delete removes a file or a whole directory tree
func (f *Files) Delete(path string) error {
	rel, err := f.rel(path)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("%w: cannot delete workspace root", ErrAccessDenied)
	}

	if _, err := f.fs.Lstat(rel); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := util.RemoveAll(f.fs, rel); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Rename moves oldPath to newPath, creating the destination's parents
func (f *Files) Rename(oldPath, newPath string) error {
	oldRel, err := f.rel(oldPath)
	if err != nil {
		return err
	}
	newRel, err := f.rel(newPath)
	if err != nil {
		return err
	}
	if oldRel == "." || newRel == "." {
		return fmt.Errorf("%w: cannot rename workspace root", ErrAccessDenied)
	}

	if _, err := f.fs.Lstat(oldRel); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, oldPath)
		}
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(newRel), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", newPath, err)
	}
	if err := f.fs.Rename(oldRel, newRel); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}
	return nil
}

// Archive writes a zip of the workspace to w. Only .git is left out, unlike
// List, so a download is a complete copy of the working tree.
func (f *Files) Archive(w io.Writer) error {
	if _, err := os.Stat(f.root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: workspace", ErrNotFound)
		}
		return err
	}

	zw := zip.NewWriter(w)
	err := util.Walk(f.fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(path)
		header.Method = zip.Deflate

		dst, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := f.fs.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to archive workspace: %w", err)
	}
	return zw.Close()
}
