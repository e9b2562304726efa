package models

// CapabilityDescriptor is a Worker's advertised FFmpeg capabilities.
// Immutable after the first probe.
type CapabilityDescriptor struct {
	FFmpegInstalled bool     `json:"ffmpeg_installed"`
	FFmpegVersion   string   `json:"ffmpeg_version,omitempty"`
	Encoders        []string `json:"encoders"`
	NvencSupported  bool     `json:"nvenc_supported"`
}

// HasEncoder reports whether the named encoder is present.
func (c CapabilityDescriptor) HasEncoder(name string) bool {
	for _, e := range c.Encoders {
		if e == name {
			return true
		}
	}
	return false
}

// DeriveNvencSupported computes the nvenc_supported flag from an encoder
// set: true iff the set contains h264_nvenc or hevc_nvenc.
func DeriveNvencSupported(encoders []string) bool {
	for _, e := range encoders {
		if e == "h264_nvenc" || e == "hevc_nvenc" {
			return true
		}
	}
	return false
}
