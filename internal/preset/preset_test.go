package preset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFFmpegArgsWithCRF(t *testing.T) {
	p, err := Get("1080p_h264_standard")
	require.NoError(t, err)
	want := []string{"-c:v", "libx264", "-vf", "scale=1920:1080", "-crf", "23", "-preset", "medium", "-c:a", "aac", "-b:a", "128k"}
	assert.Equal(t, want, p.ToFFmpegArgs())
}

func TestToFFmpegArgsWithBitrate(t *testing.T) {
	p, err := Get("1080p_nvenc")
	require.NoError(t, err)
	want := []string{"-c:v", "h264_nvenc", "-vf", "scale=1920:1080", "-b:v", "8M", "-preset", "p4", "-c:a", "aac", "-b:a", "128k"}
	assert.Equal(t, want, p.ToFFmpegArgs())
}

func TestGetUnknownPreset(t *testing.T) {
	_, err := Get("does-not-exist")
	assert.Error(t, err)
}

func TestListIsSortedAndComplete(t *testing.T) {
	names := List()
	require.Len(t, names, len(Catalog))
	assert.True(t, sort.StringsAreSorted(names), "List() not sorted: %v", names)
}

func TestBuildArgsBitratePrecedenceOverCRF(t *testing.T) {
	c := 20
	got := BuildArgs(BuildArgsOptions{Codec: "libx264", Bitrate: "4M", CRF: &c})
	want := []string{"-c:v", "libx264", "-b:v", "4M"}
	assert.Equal(t, want, got, "bitrate takes precedence over CRF per original build_args")
}

func TestBuildArgsExtra(t *testing.T) {
	got := BuildArgs(BuildArgsOptions{Extra: []string{"-map", "0"}})
	want := []string{"-map", "0"}
	assert.Equal(t, want, got)
}
