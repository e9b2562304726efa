package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoInfo describes a probed media file's primary video stream, mirroring
// the original's VideoInfo dataclass.
type VideoInfo struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	Bitrate  int64
	FPS      float64
	Format   string
}

// Resolution renders the stream dimensions as "WxH".
func (v VideoInfo) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ffprobeFormat and ffprobeStream mirror the subset of ffprobe -print_format
// json output this package consumes.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
}

type ffprobeFormat struct {
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Probe runs ffprobe against path and returns the first video stream's
// info, or an error if ffprobe fails or no video stream is present.
func (d *Detector) Probe(ctx context.Context, path string) (VideoInfo, error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("running ffprobe on %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return VideoInfo{}, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	var videoStream *ffprobeStream
	for i := range parsed.Streams {
		if parsed.Streams[i].CodecType == "video" {
			videoStream = &parsed.Streams[i]
			break
		}
	}
	if videoStream == nil {
		return VideoInfo{}, fmt.Errorf("no video stream found in %s", path)
	}

	duration, _ := strconv.ParseFloat(parsed.Format.Duration, 64)
	bitrate, _ := strconv.ParseInt(parsed.Format.BitRate, 10, 64)

	return VideoInfo{
		Duration: duration,
		Width:    videoStream.Width,
		Height:   videoStream.Height,
		Codec:    videoStream.CodecName,
		Bitrate:  bitrate,
		FPS:      parseFrameRate(videoStream.RFrameRate),
		Format:   parsed.Format.FormatName,
	}, nil
}

// parseFrameRate parses ffprobe's "num/den" frame-rate notation.
func parseFrameRate(rate string) float64 {
	if rate == "" {
		return 0
	}
	numStr, denStr, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	num, errNum := strconv.ParseFloat(numStr, 64)
	den, errDen := strconv.ParseFloat(denStr, 64)
	if errNum != nil || errDen != nil || den == 0 {
		return 0
	}
	return num / den
}
