// Package ffmpeg wraps the ffmpeg/ffprobe binaries: capability probing,
// video introspection, and transcode execution with progress reporting
// (spec §4.2, original's transcode/ffmpeg_wrapper.py).
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Detector locates the ffmpeg/ffprobe binaries and caches their reported
// capabilities, since -encoders is a ~50ms subprocess call that a Worker
// should not repeat on every /capabilities request.
type Detector struct {
	ffmpegPath  string
	ffprobePath string

	mu           sync.RWMutex
	capabilities *models.CapabilityDescriptor
	detectedAt   time.Time
	cacheTTL     time.Duration
}

// NewDetector creates a Detector for the given binary paths, caching
// capability probes for ttl.
func NewDetector(ffmpegPath, ffprobePath string, ttl time.Duration) *Detector {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Detector{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, cacheTTL: ttl}
}

// Verify confirms the ffmpeg binary is present and runnable, matching the
// original's startup check in FFmpegWrapper.__init__.
func (d *Detector) Verify(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.ffmpegPath, "-version")
	if err := cmd.Run(); err != nil {
		return &models.ConfigurationError{Message: fmt.Sprintf("ffmpeg not usable at %q", d.ffmpegPath), Err: err}
	}
	return nil
}

// Capabilities returns the Worker's capability descriptor, probing (and
// caching) on first call or after cacheTTL elapses.
func (d *Detector) Capabilities(ctx context.Context) (models.CapabilityDescriptor, error) {
	d.mu.RLock()
	if d.capabilities != nil && time.Since(d.detectedAt) < d.cacheTTL {
		cap := *d.capabilities
		d.mu.RUnlock()
		return cap, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capabilities != nil && time.Since(d.detectedAt) < d.cacheTTL {
		return *d.capabilities, nil
	}

	cap, err := d.probe(ctx)
	if err != nil {
		return models.CapabilityDescriptor{}, err
	}
	d.capabilities = &cap
	d.detectedAt = time.Now()
	return cap, nil
}

func (d *Detector) probe(ctx context.Context) (models.CapabilityDescriptor, error) {
	version, err := d.version(ctx)
	if err != nil {
		return models.CapabilityDescriptor{FFmpegInstalled: false}, nil
	}

	encoders, err := d.encoders(ctx)
	if err != nil {
		encoders = nil
	}

	return models.CapabilityDescriptor{
		FFmpegInstalled: true,
		FFmpegVersion:   version,
		Encoders:        encoders,
		NvencSupported:  models.DeriveNvencSupported(encoders),
	}, nil
}

func (d *Detector) version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) == 0 {
		return "", fmt.Errorf("empty ffmpeg -version output")
	}
	parts := strings.Fields(lines[0])
	if len(parts) < 3 {
		return "", fmt.Errorf("unrecognized ffmpeg -version output: %q", lines[0])
	}
	return parts[2], nil
}

// encoders returns the list of encoder names from ffmpeg -encoders,
// skipping the column header and decorative separator line.
func (d *Detector) encoders(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath, "-encoders", "-hide_banner")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var encoders []string
	inList := false
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "------") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		line = strings.TrimLeft(line, " ")
		if len(line) < 8 {
			continue
		}
		if line[0] != 'V' && line[0] != 'A' && line[0] != 'S' {
			continue
		}
		rest := strings.TrimSpace(line[6:])
		parts := strings.Fields(rest)
		if len(parts) >= 1 && parts[0] != "" {
			encoders = append(encoders, parts[0])
		}
	}
	return encoders, nil
}

// FFmpegPath returns the configured ffmpeg binary path.
func (d *Detector) FFmpegPath() string { return d.ffmpegPath }

// FFprobePath returns the configured ffprobe binary path.
func (d *Detector) FFprobePath() string { return d.ffprobePath }
