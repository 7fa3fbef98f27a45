// Package archive builds Walk abstraction on top of "archive/zip" so zip
// archives could be used as content sources.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The name argument is path of the entry inside archive and
// r gives its uncompressed content. If an error is returned, processing stops.
type WalkFunc func(name string, r io.Reader) error

// Walk walks all regular files in the archive whose names start with prefix,
// calling walkFn for each one. Entries with path traversal components ("..")
// or absolute paths abort the walk.
func Walk(ctx context.Context, archive, prefix string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := visit(f, walkFn); err != nil {
			return fmt.Errorf("zip entry %q: %w", name, err)
		}
	}
	return nil
}

func visit(f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return walkFn(f.Name, rc)
}

// Split separates path to existing zip archive from path inside it, for
// example "templates.zip/pages/index.html" gives "templates.zip" and
// "pages/index.html". It reports false when no prefix of p is a zip archive.
func Split(p string) (archive, inner string, ok bool) {
	var head, tail string
	for head = filepath.Clean(p); len(head) != 0 && head != "." && head != string(filepath.Separator); {
		fi, err := os.Stat(head)
		if err == nil {
			if !fi.Mode().IsRegular() || !IsArchive(head) {
				return "", "", false
			}
			return head, filepath.ToSlash(tail), true
		}
		dir, file := filepath.Split(head)
		tail = path.Join(file, tail)
		head = strings.TrimSuffix(dir, string(filepath.Separator))
	}
	return "", "", false
}

// IsArchive checks zip signature of the file.
func IsArchive(fname string) bool {
	f, err := os.Open(fname)
	if err != nil {
		return false
	}
	defer f.Close()

	sig := make([]byte, 4)
	if _, err := io.ReadFull(f, sig); err != nil {
		return false
	}
	return string(sig) == "PK\x03\x04"
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
