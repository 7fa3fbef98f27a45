package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"containcss/misc"
)

// ReporterConfig locates debug report archive.
type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	name := f.Name()
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return &Report{name: name, file: f, items: make(map[string]item)}, nil
}

// item is either captured data or file system path read when report is closed.
type item struct {
	path     string
	abs      string
	data     []byte
	captured bool
	at       time.Time
}

// Report collects build artifacts (input, candidates, resolved theme, result,
// logs) into a single zip archive. Nil Report is valid and ignores everything,
// so callers never check whether debugging was requested.
// Not safe for concurrent use.
type Report struct {
	name  string
	file  *os.File
	items map[string]item
}

func (r *Report) add(name string, it item) {
	if old, ok := r.items[name]; ok {
		if old.captured || it.captured || old.path != it.path {
			panic(fmt.Sprintf("report entry [%s] stored twice", name))
		}
	}
	r.items[name] = it
}

// Store remembers path to file or directory, its content is archived on Close.
// Storing the same path under the same name again is allowed.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	it := item{path: path, abs: path}
	if p, err := filepath.Abs(path); err == nil {
		it.abs = p
	}
	r.add(name, it)
}

// StoreData archives data under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.add(name, item{data: data, captured: true, at: time.Now()})
}

// StoreYAML marshals v and archives result under name.
func (r *Report) StoreYAML(name string, v any) error {
	if r == nil {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to marshal %s for report: %w", name, err)
	}
	r.StoreData(name, data)
	return nil
}

// Name returns absolute name of report archive.
func (r *Report) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Close writes archive. Subsequent calls do nothing.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return multierr.Append(r.write(f), f.Close())
}

func (r *Report) write(w io.Writer) (err error) {
	zw := zip.NewWriter(w)
	defer func() {
		err = multierr.Append(err, zw.Close())
	}()

	names := slices.Collect(maps.Keys(r.items))
	sort.Sort(natural.StringSlice(names))

	now := time.Now()
	var manifest bytes.Buffer
	for _, name := range names {
		it := r.items[name]
		at := it.at
		if at.IsZero() {
			at = now
		}
		fmt.Fprintf(&manifest, "%s\t%s\t%s : %s\n", at.UTC().Format(time.UnixDate), name, it.path, it.abs)
	}
	if err := addEntry(zw, "MANIFEST", now, &manifest); err != nil {
		return err
	}

	for _, name := range names {
		if err := r.items[name].save(zw, name); err != nil {
			return fmt.Errorf("unable to archive %s: %w", name, err)
		}
	}
	return nil
}

func (it item) save(zw *zip.Writer, name string) error {
	if it.captured {
		return addEntry(zw, name, it.at, bytes.NewReader(it.data))
	}
	info, err := os.Stat(it.abs)
	if err != nil {
		// gone by now, manifest still lists it
		return nil
	}
	switch {
	case info.IsDir():
		return addTree(zw, name, it.abs)
	case info.Mode().IsRegular():
		return addFile(zw, name, it.abs, info.ModTime())
	}
	return nil
}

func addEntry(zw *zip.Writer, name string, at time.Time, src io.Reader) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: at})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func addFile(zw *zip.Writer, name, path string, at time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addEntry(zw, name, at, f)
}

func addTree(zw *zip.Writer, name, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// directories, links, sockets
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(zw, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
