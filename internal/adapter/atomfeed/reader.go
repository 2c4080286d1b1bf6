// Package atomfeed reads Atom/GeoRSS feed files from a directory.
package atomfeed

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

// DefaultExtension is the file suffix of feed documents.
const DefaultExtension = ".atom"

// Reader enumerates and parses feed files. It implements pipeline.DocumentSource.
type Reader struct {
	root   string
	fsys   fs.FS
	ext    string
	parser DocumentParser
}

// NewReader creates a Reader over fsys. root is only used to build the display
// path of each document.
func NewReader(root string, fsys fs.FS, ext string, parser DocumentParser) *Reader {
	if ext == "" {
		ext = DefaultExtension
	}
	if parser == nil {
		parser = NewAtomParser()
	}
	return &Reader{root: root, fsys: fsys, ext: ext, parser: parser}
}

// NewDirReader creates a Reader over a directory on disk.
func NewDirReader(dir, ext string, parser DocumentParser) *Reader {
	return NewReader(dir, os.DirFS(dir), ext, parser)
}

// Documents yields one document per feed file in lexical name order. A file
// that fails to parse is yielded with a *domain.DocumentError and iteration
// continues. A failure to list the directory is yielded once and ends the sequence.
func (r *Reader) Documents(ctx context.Context) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		sources, err := r.sources()
		if err != nil {
			yield(domain.Document{}, err)
			return
		}

		for _, src := range sources {
			if ctx.Err() != nil {
				yield(domain.Document{}, ctx.Err())
				return
			}

			entries, err := r.parser.ParseDocument(r.fsys, src)
			if err != nil {
				if !yield(domain.Document{Path: src.Path}, &domain.DocumentError{Path: src.Path, Err: err}) {
					return
				}
				continue
			}
			if !yield(domain.Document{Path: src.Path, Entries: entries}, nil) {
				return
			}
		}
	}
}

// CheckReadiness reports whether the feed directory can be listed.
func (r *Reader) CheckReadiness(_ context.Context) error {
	_, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return fmt.Errorf("feed directory %s: %w", r.root, err)
	}
	return nil
}

func (r *Reader) sources() ([]Source, error) {
	dirEntries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list feed directory %s: %w", r.root, err)
	}

	sources := make([]Source, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), r.ext) {
			continue
		}
		src := Source{Name: de.Name(), Path: filepath.Join(r.root, de.Name())}
		if info, err := de.Info(); err == nil {
			src.Size = info.Size()
			src.ModTime = info.ModTime()
		}
		sources = append(sources, src)
	}
	return sources, nil
}
