package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"smartassist/internal/crawler"
	"smartassist/internal/extractor"
	"smartassist/internal/git"
	"smartassist/internal/project"
)

// Indexer orchestrates source indexing and project construction.
type Indexer struct {
	crawler *crawler.Crawler
	opts    []project.Option
	log     logrus.FieldLogger
}

// NewIndexer creates a new indexer. opts are applied to every project it
// builds.
func NewIndexer(c *crawler.Crawler, log logrus.FieldLogger, opts ...project.Option) *Indexer {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Indexer{crawler: c, opts: opts, log: log}
}

// BuildProject scans the roots and resolves every declaration together with
// the JDK stubs.
func (i *Indexer) BuildProject(ctx context.Context, roots ...string) (*project.Project, error) {
	units, err := i.crawler.Collect(ctx, roots...)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return project.Build(ctx, units, i.opts...)
}

type UpdateResult struct {
	Project      *project.Project
	UpdatedFiles []string
	DeletedFiles []string
	Types        int
}

// Update re-indexes the changed .java files on top of base. Types of
// changed files are dropped first, so removed or renamed declarations do
// not survive. base is left untouched.
func (i *Indexer) Update(ctx context.Context, base *project.Project, changes []git.ChangedFile) (*UpdateResult, error) {
	res := &UpdateResult{}
	var touched []string
	for _, change := range changes {
		if !strings.HasSuffix(change.Path, ".java") {
			continue
		}
		path := filepath.Clean(change.Path)
		touched = append(touched, path)

		_, err := os.Stat(path)
		switch {
		case err == nil:
			res.UpdatedFiles = append(res.UpdatedFiles, path)
		case errors.Is(err, os.ErrNotExist):
			res.DeletedFiles = append(res.DeletedFiles, path)
		default:
			return nil, err
		}
		i.log.WithFields(logrus.Fields{"path": path, "lines": len(change.ChangedLines)}).Debug("changed file")
	}
	if len(touched) == 0 {
		res.Project = base
		return res, nil
	}

	var units []*extractor.TypeUnit
	if err := i.crawler.ExtractFiles(ctx, res.UpdatedFiles, func(u *extractor.TypeUnit) {
		units = append(units, u)
	}); err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	sort.SliceStable(units, func(a, b int) bool {
		if units[a].Filepath != units[b].Filepath {
			return units[a].Filepath < units[b].Filepath
		}
		return units[a].StartLine < units[b].StartLine
	})

	res.Types = len(units)
	res.Project = project.New(base.Graph().Without(touched...), i.opts...).WithOverlay(units)
	return res, nil
}
