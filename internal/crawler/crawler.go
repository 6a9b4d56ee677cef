package crawler

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"smartassist/internal/extractor"
)

// Crawler scans source roots for Java files.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
	workers   int
	log       logrus.FieldLogger
}

type Option func(*Crawler)

// WithWorkers bounds the number of files extracted concurrently.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Crawler) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, opts ...Option) *Crawler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Crawler{
		extractor: ext,
		ignored:   []string{".git", ".idea", "build", "target", "out", "node_modules"},
		workers:   runtime.GOMAXPROCS(0),
		log:       discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScanProject walks root and extracts every .java file. Files are extracted
// on a bounded worker pool; onUnit is never called concurrently. Unreadable
// or unparsable files are logged and skipped.
func (c *Crawler) ScanProject(ctx context.Context, root string, onUnit func(*extractor.TypeUnit)) error {
	paths, err := c.javaFiles(root)
	if err != nil {
		return err
	}
	if err := c.ExtractFiles(ctx, paths, onUnit); err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{"root": root, "files": len(paths)}).Debug("scan finished")
	return nil
}

// ExtractFiles extracts the given files with the same worker pool and
// skip rules as ScanProject.
func (c *Crawler) ExtractFiles(ctx context.Context, paths []string, onUnit func(*extractor.TypeUnit)) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			units, err := c.extractor.ExtractFromFile(path)
			if err != nil {
				// Log and continue instead of failing the whole scan
				c.log.WithError(err).WithField("path", path).Warn("skipping file")
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, unit := range units {
				onUnit(unit)
			}
			return nil
		})
	}
	return g.Wait()
}

// Collect scans every root and returns the extracted units ordered by file
// and position.
func (c *Crawler) Collect(ctx context.Context, roots ...string) ([]*extractor.TypeUnit, error) {
	var units []*extractor.TypeUnit
	for _, root := range roots {
		err := c.ScanProject(ctx, root, func(u *extractor.TypeUnit) {
			units = append(units, u)
		})
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Filepath != units[j].Filepath {
			return units[i].Filepath < units[j].Filepath
		}
		return units[i].StartLine < units[j].StartLine
	})
	return units, nil
}

func (c *Crawler) javaFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), ".java") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
