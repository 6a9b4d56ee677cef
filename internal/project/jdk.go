package project

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"smartassist/internal/extractor"
)

//go:embed jdk/*.java
var jdkFS embed.FS

var (
	jdkOnce  sync.Once
	jdkUnits []*extractor.TypeUnit
	jdkErr   error
)

// JDKUnits returns the declarations of the bundled JDK stubs. The stubs are
// parsed once per process.
func JDKUnits(ctx context.Context) ([]*extractor.TypeUnit, error) {
	jdkOnce.Do(func() {
		jdkUnits, jdkErr = loadJDK(ctx)
	})
	return jdkUnits, jdkErr
}

func loadJDK(ctx context.Context) ([]*extractor.TypeUnit, error) {
	ext, err := extractor.NewExtractor("java")
	if err != nil {
		return nil, err
	}
	files, err := fs.Glob(jdkFS, "jdk/*.java")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var units []*extractor.TypeUnit
	for _, f := range files {
		src, err := jdkFS.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read stub %s: %w", f, err)
		}
		fileUnits, err := ext.ExtractFromSource(ctx, path.Join("jdk", path.Base(f)), src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stub %s: %w", f, err)
		}
		units = append(units, fileUnits...)
	}
	return units, nil
}
