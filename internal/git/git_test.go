package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/demo/Shape.java b/src/demo/Shape.java
index 3b18e51..a1c2d3f 100644
--- a/src/demo/Shape.java
+++ b/src/demo/Shape.java
@@ -3,0 +4,2 @@ public interface Shape {
+  double perimeter();
+
@@ -10 +12 @@ public interface Shape {
-  String name();
+  CharSequence name();
diff --git a/src/demo/Old.java b/src/demo/Old.java
deleted file mode 100644
index 5d2c1a0..0000000
--- a/src/demo/Old.java
+++ /dev/null
@@ -1,3 +0,0 @@
-package demo;
-class Old {}
-
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "src/demo/Shape.java", changes[0].Path)
	assert.Equal(t, []int{4, 5, 12}, changes[0].ChangedLines)

	assert.Equal(t, "src/demo/Old.java", changes[1].Path)
	assert.Empty(t, changes[1].ChangedLines, "deletions leave no lines in the new version")
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}
