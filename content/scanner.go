package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"containcss/archive"
)

// Scanner reads content sources and collects class candidates.
type Scanner struct {
	log   *zap.Logger
	files int
	bytes int64
}

// NewScanner creates scanner logging to log.
func NewScanner(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log.Named("content")}
}

// Scan collects candidates from sources and raw snippets. Source may be a
// file, a directory (walked recursively, hidden entries and binary files are
// skipped), a glob pattern, a zip archive or a path inside zip archive.
// Sources which cannot be read are reported together, candidates from the
// rest are still returned.
func (s *Scanner) Scan(ctx context.Context, sources, raw []string) (*Candidates, error) {
	found := NewCandidates()

	for i, snippet := range raw {
		s.scanText(fmt.Sprintf("raw[%d]", i), []byte(snippet), found)
	}

	var errs error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		part := NewCandidates()
		err := s.scanSource(ctx, src, part)
		s.log.Debug("Content source scanned", zap.String("source", src), zap.Int("candidates", part.Len()))
		found.Merge(part)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return found, err
			}
			errs = multierr.Append(errs, fmt.Errorf("content source %q: %w", src, err))
		}
	}

	s.log.Debug("Content scanned",
		zap.Int("sources", len(sources)+len(raw)),
		zap.Int("files", s.files),
		zap.String("size", humanize.Bytes(uint64(s.bytes))),
		zap.Int("candidates", found.Len()))
	return found, errs
}

func (s *Scanner) scanSource(ctx context.Context, src string, found *Candidates) error {
	if strings.ContainsAny(src, "*?[") {
		matches, err := filepath.Glob(src)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			s.log.Warn("Content pattern matches nothing", zap.String("pattern", src))
		}
		var errs error
		for _, m := range matches {
			errs = multierr.Append(errs, s.scanPath(ctx, m, found))
		}
		return errs
	}
	return s.scanPath(ctx, src, found)
}

func (s *Scanner) scanPath(ctx context.Context, p string, found *Candidates) error {
	fi, err := os.Stat(p)
	if err != nil {
		// may be path inside archive
		if arc, inner, ok := archive.Split(p); ok {
			return s.scanArchive(ctx, arc, inner, found)
		}
		return err
	}

	switch {
	case fi.IsDir():
		return s.scanDir(ctx, p, found)
	case !fi.Mode().IsRegular():
		return fmt.Errorf("unexpected path mode %s", fi.Mode())
	case archive.IsArchive(p):
		return s.scanArchive(ctx, p, "", found)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	s.scanData(p, data, found)
	return nil
}

func (s *Scanner) scanDir(ctx context.Context, dir string, found *Candidates) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// directories themselves, links, sockets, etc.
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		s.scanData(p, data, found)
		return nil
	})
}

func (s *Scanner) scanArchive(ctx context.Context, arc, prefix string, found *Candidates) error {
	s.log.Debug("Scanning archive", zap.String("archive", arc), zap.String("prefix", prefix))
	return archive.Walk(ctx, arc, prefix, func(name string, r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		s.scanData(path.Join(arc, name), data, found)
		return nil
	})
}

// scanData skips binary data and dispatches text by file extension.
func (s *Scanner) scanData(name string, data []byte, found *Candidates) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		s.log.Debug("Skipping binary content", zap.String("file", name), zap.String("type", kind.MIME.Value))
		return
	}
	s.files++
	s.bytes += int64(len(data))

	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		if err := s.scanHTML(data, found); err != nil {
			s.log.Warn("Unable to tokenize HTML, scanning as text", zap.String("file", name), zap.Error(err))
			s.scanText(name, data, found)
		}
	default:
		s.scanText(name, data, found)
	}
}

// scanText handles any text, BOM selects encoding, UTF-8 otherwise.
func (s *Scanner) scanText(name string, data []byte, found *Candidates) {
	text, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		s.log.Debug("Unable to decode content, using raw bytes", zap.String("file", name), zap.Error(err))
		text = data
	}
	found.Extract(string(text))
}

// scanHTML looks at attribute values and text only, markup and comments are
// ignored. Encoding is detected from BOM or meta tags.
func (s *Scanner) scanHTML(data []byte, found *Candidates) error {
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return err
	}

	l := html.NewLexer(parse.NewInput(r))
	for {
		tt, text := l.Next()
		switch tt {
		case html.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return err
			}
			return nil
		case html.AttributeToken:
			found.Extract(string(l.AttrVal()))
		case html.TextToken:
			found.Extract(string(text))
		}
	}
}
