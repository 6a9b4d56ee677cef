package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path string
	// ChangedLines are line numbers in the new version. Nil for untracked
	// files, which are new as a whole.
	ChangedLines []int
}

// chunkHeader matches @@ -oldStart,oldLen +newStart,newLen @@.
// Only the + part is captured.
var chunkHeader = regexp.MustCompile(`^@@ \-\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// GetChangedFiles runs git diff in dir and returns the changed files with
// line numbers, followed by untracked files.
func GetChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	diff, err := run(ctx, dir, "diff", "-U0", baseRef)
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	changes, err := parseDiff(diff)
	if err != nil {
		return nil, err
	}

	untracked, err := run(ctx, dir, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}
	for _, path := range strings.Split(string(untracked), "\n") {
		if path = strings.TrimSpace(path); path != "" {
			changes = append(changes, ChangedFile{Path: path})
		}
	}
	return changes, nil
}

func run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var changes []ChangedFile
	var currentFile *ChangedFile

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			// a/path/to/file b/path/to/file; the b/ path is the new version
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				if currentFile != nil {
					changes = append(changes, *currentFile)
				}
				currentFile = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
			continue
		}

		if currentFile == nil {
			continue
		}

		if strings.HasPrefix(line, "@@") {
			matches := chunkHeader.FindStringSubmatch(line)
			if len(matches) > 1 {
				startLine, _ := strconv.Atoi(matches[1])
				count := 1 // Default length is 1 if omitted
				if len(matches) > 2 && matches[2] != "" {
					count, _ = strconv.Atoi(matches[2])
				}
				// count 0 is a pure deletion: no lines exist in the new file
				for i := 0; i < count; i++ {
					currentFile.ChangedLines = append(currentFile.ChangedLines, startLine+i)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if currentFile != nil {
		changes = append(changes, *currentFile)
	}

	return changes, nil
}
