package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOutputPathNoCollision(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	got := NextOutputPath(input, DefaultSuffix)
	assert.Equal(t, filepath.Join(dir, "in_transcoded.mp4"), got)
}

func TestNextOutputPathAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in_transcoded.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in_transcoded_2.mp4"), []byte("x"), 0o644))

	got := NextOutputPath(input, DefaultSuffix)
	assert.Equal(t, filepath.Join(dir, "in_transcoded_3.mp4"), got)
}

func TestCreateTasksForFilesAssignsDenseIDs(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")}
	tasks := CreateTasksForFiles(files, []string{"-c:v", "libx264"}, 3, DefaultSuffix, 1)

	require.Len(t, tasks, 2)
	assert.Equal(t, "task_1", tasks[0].ID)
	assert.Equal(t, "task_2", tasks[1].ID)
	assert.Equal(t, 3, tasks[0].MaxAttempts)
}
