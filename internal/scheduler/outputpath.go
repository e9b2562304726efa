package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// DefaultSuffix is appended to an input's basename to form its default
// output path (spec §4.3 output-path convention).
const DefaultSuffix = "_transcoded"

// NextOutputPath computes dir/name<suffix>.ext, trying <suffix>_2,
// <suffix>_3, ... until a path that doesn't already exist is found. This
// runs on the Controller side; the Worker always stages to its own
// output_<name> path regardless of what's requested here.
func NextOutputPath(inputPath, suffix string) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	candidate := filepath.Join(dir, base+suffix+ext)
	if !exists(candidate) {
		return candidate
	}
	for n := 2; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s%s_%d%s", base, suffix, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateTasksForFiles builds one pending Task per input file, with dense
// monotonic IDs starting at startID, using NextOutputPath for each output
// location (spec §4.3 batch creation).
func CreateTasksForFiles(files []string, ffmpegArgs []string, maxAttempts int, suffix string, startID int) []*models.Task {
	tasks := make([]*models.Task, 0, len(files))
	for i, f := range files {
		id := fmt.Sprintf("task_%d", startID+i)
		output := NextOutputPath(f, suffix)
		tasks = append(tasks, models.NewTask(id, f, output, ffmpegArgs, maxAttempts))
	}
	return tasks
}
