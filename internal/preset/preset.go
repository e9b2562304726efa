// Package preset provides the catalog of named transcode presets, carried
// over from the original implementation's transcode/presets.py, and the
// free-form arg-building helper (build_args) it grew alongside.
package preset

import (
	"fmt"
	"sort"
)

// Preset is a named, pre-tuned set of ffmpeg encoding parameters.
type Preset struct {
	Name          string
	Description   string
	Codec         string
	Resolution    string // "W:H", ffmpeg scale-filter syntax
	CRF           *int
	Bitrate       string
	EncodePreset  string // ffmpeg -preset value
	AudioCodec    string
	AudioBitrate  string
}

// ToFFmpegArgs converts p into an ffmpeg argument vector, in the same
// field order as the original's to_ffmpeg_args.
func (p Preset) ToFFmpegArgs() []string {
	args := []string{"-c:v", p.Codec}

	if p.Resolution != "" {
		args = append(args, "-vf", fmt.Sprintf("scale=%s", p.Resolution))
	}

	if p.CRF != nil {
		args = append(args, "-crf", fmt.Sprintf("%d", *p.CRF))
	} else if p.Bitrate != "" {
		args = append(args, "-b:v", p.Bitrate)
	}

	if p.EncodePreset != "" {
		args = append(args, "-preset", p.EncodePreset)
	}

	if p.AudioCodec != "" {
		args = append(args, "-c:a", p.AudioCodec)
	}

	if p.AudioBitrate != "" {
		args = append(args, "-b:a", p.AudioBitrate)
	}

	return args
}

func crf(v int) *int { return &v }

// Catalog is the fixed set of named presets (spec §6 supplement,
// original's PRESETS dict).
var Catalog = map[string]Preset{
	"1080p_h264_high": {
		Name: "1080p H.264 High Quality", Description: "1920x1080 H.264, high quality, broadly compatible",
		Codec: "libx264", Resolution: "1920:1080", CRF: crf(18), EncodePreset: "slow",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"1080p_h264_standard": {
		Name: "1080p H.264 Standard", Description: "1920x1080 H.264, balanced quality and size",
		Codec: "libx264", Resolution: "1920:1080", CRF: crf(23), EncodePreset: "medium",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"720p_h264": {
		Name: "720p H.264", Description: "1280x720 H.264, suited for network delivery",
		Codec: "libx264", Resolution: "1280:720", CRF: crf(23), EncodePreset: "medium",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"480p_h264": {
		Name: "480p H.264", Description: "854x480 H.264, small and fast to transfer",
		Codec: "libx264", Resolution: "854:480", CRF: crf(28), EncodePreset: "fast",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"1080p_h265_high": {
		Name: "1080p H.265 High Quality", Description: "1920x1080 H.265, high compression ratio",
		Codec: "libx265", Resolution: "1920:1080", CRF: crf(20), EncodePreset: "slow",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"1080p_h265_standard": {
		Name: "1080p H.265 Standard", Description: "1920x1080 H.265, space-saving",
		Codec: "libx265", Resolution: "1920:1080", CRF: crf(28), EncodePreset: "medium",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"4k_h265": {
		Name: "4K H.265", Description: "3840x2160 H.265, ultra-high-definition",
		Codec: "libx265", Resolution: "3840:2160", CRF: crf(24), EncodePreset: "medium",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"1080p_nvenc": {
		Name: "1080p NVENC", Description: "1920x1080 NVIDIA hardware-accelerated encode",
		Codec: "h264_nvenc", Resolution: "1920:1080", Bitrate: "8M", EncodePreset: "p4",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"1080p_hevc_nvenc": {
		Name: "1080p HEVC NVENC", Description: "1920x1080 NVIDIA HEVC hardware-accelerated encode",
		Codec: "hevc_nvenc", Resolution: "1920:1080", Bitrate: "5M", EncodePreset: "p4",
		AudioCodec: "aac", AudioBitrate: "128k",
	},
	"audio_mp3": {
		Name: "Extract MP3 Audio", Description: "extract audio track and convert to MP3",
		Codec: "none", AudioCodec: "libmp3lame", AudioBitrate: "320k",
	},
	"audio_aac": {
		Name: "Extract AAC Audio", Description: "extract audio track and convert to AAC",
		Codec: "none", AudioCodec: "aac", AudioBitrate: "256k",
	},
}

// Get looks up a preset by name.
func Get(name string) (Preset, error) {
	p, ok := Catalog[name]
	if !ok {
		return Preset{}, fmt.Errorf("preset %q does not exist; available: %s", name, joinNames())
	}
	return p, nil
}

// List returns all preset names, sorted.
func List() []string {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions returns a name -> description map for all presets.
func Descriptions() map[string]string {
	out := make(map[string]string, len(Catalog))
	for name, p := range Catalog {
		out[name] = p.Description
	}
	return out
}

func joinNames() string {
	names := List()
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// BuildArgsOptions mirrors the original's free-form build_args helper for
// callers that want to assemble ffmpeg args without a named preset.
type BuildArgsOptions struct {
	Codec        string
	Resolution   string // "W:H"
	Bitrate      string
	CRF          *int
	EncodePreset string
	AudioCodec   string
	AudioBitrate string
	Extra        []string
}

// BuildArgs assembles an ffmpeg argument vector from ad-hoc options, in the
// same field order as the original's build_args static method.
func BuildArgs(opts BuildArgsOptions) []string {
	var args []string

	if opts.Codec != "" {
		args = append(args, "-c:v", opts.Codec)
	}
	if opts.Resolution != "" {
		args = append(args, "-vf", fmt.Sprintf("scale=%s", opts.Resolution))
	}
	if opts.Bitrate != "" {
		args = append(args, "-b:v", opts.Bitrate)
	} else if opts.CRF != nil {
		args = append(args, "-crf", fmt.Sprintf("%d", *opts.CRF))
	}
	if opts.EncodePreset != "" {
		args = append(args, "-preset", opts.EncodePreset)
	}
	if opts.AudioCodec != "" {
		args = append(args, "-c:a", opts.AudioCodec)
	}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	if len(opts.Extra) > 0 {
		args = append(args, opts.Extra...)
	}

	return args
}
