package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"smartassist/internal/extractor"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/demo/Shape.java"), `package demo;
public interface Shape {
  double area();
}
`)
	writeFile(t, filepath.Join(root, "src/demo/Circle.java"), `package demo;
public class Circle implements Shape {
  public double area() { return 0; }
  public static class Unit extends Circle {}
}
`)
	writeFile(t, filepath.Join(root, "target/generated/demo/Ghost.java"), `package demo;
public class Ghost {}
`)
	writeFile(t, filepath.Join(root, "README.md"), "# demo\n")
	return root
}

func TestCrawler_ScanProject(t *testing.T) {
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	root := sampleTree(t)

	c := NewCrawler(ext, WithWorkers(2))
	var names []string
	err = c.ScanProject(context.Background(), root, func(unit *extractor.TypeUnit) {
		names = append(names, unit.QualifiedName)
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"demo.Shape", "demo.Circle", "demo.Circle.Unit"}, names)
}

func TestCrawler_Collect(t *testing.T) {
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	root := sampleTree(t)
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "lib/Util.java"), "package lib;\npublic final class Util {}\n")

	units, err := NewCrawler(ext).Collect(context.Background(), root, other)
	require.NoError(t, err)

	var names []string
	for _, u := range units {
		names = append(names, u.QualifiedName)
	}
	assert.Len(t, names, 4)
	assert.Contains(t, names, "lib.Util")
	assert.NotContains(t, names, "demo.Ghost", "build output is ignored")

	var circle, unit int
	for i, n := range names {
		switch n {
		case "demo.Circle":
			circle = i
		case "demo.Circle.Unit":
			unit = i
		}
	}
	assert.Less(t, circle, unit, "units of a file keep source order")
}

func TestCrawler_SkipsUnreadableFiles(t *testing.T) {
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	root := sampleTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "src/demo/Broken.java")))

	log, hook := logtest.NewNullLogger()
	units, err := NewCrawler(ext, WithLogger(log)).Collect(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, units, 3)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["path"] == filepath.Join(root, "src/demo/Broken.java") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCrawler_Cancelled(t *testing.T) {
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewCrawler(ext).Collect(ctx, sampleTree(t))
	assert.ErrorIs(t, err, context.Canceled)
}
