// Package ingest loads manuscript text from disk for analysis.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// Extensions lists the chapter file types read from a directory.
var Extensions = []string{".md", ".txt"}

// ProgressFunc is called once per chapter file read.
type ProgressFunc func(done, total int)

type options struct {
	progress    ProgressFunc
	concurrency int
}

// Option configures LoadChapters.
type Option func(*options)

// WithProgress reports per-file progress.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithConcurrency bounds the number of files read at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// ChapterFiles lists chapter files in dir in natural order, so "ch2"
// sorts before "ch10".
func ChapterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if hasExtension(e.Name(), Extensions) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return naturalLess(filepath.Base(files[i]), filepath.Base(files[j]))
	})
	return files, nil
}

// LoadChapters reads every chapter file in dir. Empty files are dropped
// and the remaining chapters are indexed from zero in file order.
func LoadChapters(ctx context.Context, dir string, opts ...Option) ([]model.ChapterText, error) {
	o := options{concurrency: 4}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := ChapterFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", strings.Join(Extensions, "/"), dir)
	}

	chapters := make([]model.ChapterText, len(files))
	var (
		mu   sync.Mutex
		done int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			chapter, err := readChapter(path)
			if err != nil {
				return err
			}
			chapters[i] = chapter

			if o.progress != nil {
				mu.Lock()
				done++
				o.progress(done, len(files))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := chapters[:0]
	for _, c := range chapters {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		c.Index = len(out)
		out = append(out, c)
	}
	return out, nil
}

func readChapter(path string) (model.ChapterText, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a directory listing
	if err != nil {
		return model.ChapterText{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := NormalizeText(string(data))
	title, body := splitTitle(content)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return model.ChapterText{Title: title, Content: body}, nil
}

// splitTitle takes a leading markdown heading as the chapter title.
func splitTitle(content string) (string, string) {
	first, rest, _ := strings.Cut(content, "\n")
	trimmed := strings.TrimSpace(first)
	if !strings.HasPrefix(trimmed, "#") {
		return "", content
	}
	title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	return title, strings.TrimLeft(rest, "\n")
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// naturalLess compares names treating digit runs as numbers.
func naturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			na, nb = strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
