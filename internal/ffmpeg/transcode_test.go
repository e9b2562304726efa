package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgressSeconds(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{"seconds", "frame=  120 fps= 30 q=28.0 size=    512kB time=00:00:04.00 bitrate=1048.6kbits/s", 4, true},
		{"minutes", "frame=  900 fps= 30 q=28.0 size=   2048kB time=00:01:30.50 bitrate=186.0kbits/s", 90.5, true},
		{"hours", "frame= 3600 fps= 30 q=28.0 size=   8192kB time=01:02:03.25 bitrate=17.7kbits/s", 3723.25, true},
		{"no time field", "ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := parseProgressSeconds(c.line)
			assert.Equal(t, c.wantOK, ok)
			if c.wantOK {
				assert.Equal(t, c.want, got)
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		rate string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"0/0", 0},
		{"", 0},
		{"25", 25},
	}
	for _, c := range cases {
		t.Run(c.rate, func(t *testing.T) {
			assert.Equal(t, c.want, parseFrameRate(c.rate))
		})
	}
}
