// Package probe inspects media files for stream metadata. The production
// implementation shells out to ffprobe; the Prober interface keeps the rest
// of the core independent of the probing process.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when the probed file carries no video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// Metadata describes the video stream of a probed file.
type Metadata struct {
	Duration           float64 `json:"duration"`
	FrameRate          int     `json:"frameRate"`
	CodedWidth         int     `json:"codedWidth"`
	CodedHeight        int     `json:"codedHeight"`
	DisplayAspectRatio string  `json:"displayAspectRatio"`
}

// Prober inspects a media file at the given path.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*Metadata, error)
}

// FFProber probes files by invoking the ffprobe binary.
type FFProber struct {
	// Binary overrides the ffprobe executable name. Empty means "ffprobe"
	// resolved from PATH.
	Binary string
}

// NewFFProber creates a Prober backed by the ffprobe binary.
func NewFFProber() *FFProber {
	return &FFProber{}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType          string `json:"codec_type"`
	AvgFrameRate       string `json:"avg_frame_rate"`
	CodedWidth         int    `json:"coded_width"`
	CodedHeight        int    `json:"coded_height"`
	DisplayAspectRatio string `json:"display_aspect_ratio"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Probe runs ffprobe against the file and extracts video stream metadata.
func (p *FFProber) Probe(ctx context.Context, filePath string) (*Metadata, error) {
	binary := p.Binary
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", filePath, err)
	}

	return ParseOutput(output)
}

// ParseOutput converts raw ffprobe JSON into Metadata. It fails with
// ErrNoVideoStream when no stream has codec_type "video".
func ParseOutput(raw []byte) (*Metadata, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	var video *ffprobeStream
	for i := range ff.Streams {
		if ff.Streams[i].CodecType == "video" {
			video = &ff.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	meta := &Metadata{
		FrameRate:          RoundFrameRate(video.AvgFrameRate),
		CodedWidth:         video.CodedWidth,
		CodedHeight:        video.CodedHeight,
		DisplayAspectRatio: video.DisplayAspectRatio,
	}

	if dur, err := strconv.ParseFloat(ff.Format.Duration, 64); err == nil {
		meta.Duration = dur
	}

	return meta, nil
}

// RoundFrameRate converts a rational frame rate string "N/D" to the nearest
// whole frames per second. Malformed input yields 0.
func RoundFrameRate(s string) int {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, _ := strconv.ParseFloat(parts[0], 64)
	den, _ := strconv.ParseFloat(parts[1], 64)
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den))
}
