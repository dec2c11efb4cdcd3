package probe

import (
	"errors"
	"testing"
)

func TestParseOutput_VideoStream(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "audio", "avg_frame_rate": "0/0"},
			{"codec_type": "video", "avg_frame_rate": "60000/1001", "coded_width": 1920, "coded_height": 1088, "display_aspect_ratio": "16:9"}
		],
		"format": {"duration": "734.567000"}
	}`)

	meta, err := ParseOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %d", meta.FrameRate)
	}
	if meta.CodedWidth != 1920 || meta.CodedHeight != 1088 {
		t.Errorf("unexpected coded dimensions %dx%d", meta.CodedWidth, meta.CodedHeight)
	}
	if meta.DisplayAspectRatio != "16:9" {
		t.Errorf("unexpected aspect ratio %q", meta.DisplayAspectRatio)
	}
	if meta.Duration != 734.567 {
		t.Errorf("unexpected duration %f", meta.Duration)
	}
}

func TestParseOutput_NoVideoStream(t *testing.T) {
	raw := []byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`)

	_, err := ParseOutput(raw)
	if !errors.Is(err, ErrNoVideoStream) {
		t.Errorf("expected ErrNoVideoStream, got %v", err)
	}
}

func TestParseOutput_Malformed(t *testing.T) {
	_, err := ParseOutput([]byte(`{"streams":`))
	if err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestRoundFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"30/1", 30},
		{"60000/1001", 60},
		{"24000/1001", 24},
		{"0/0", 0},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := RoundFrameRate(tt.in); got != tt.want {
			t.Errorf("RoundFrameRate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
