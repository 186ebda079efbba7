package engine

import (
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestTranslateFormat(t *testing.T) {
	got := translateFormat(&ytdlp.ExtractedFormat{
		FormatID:   strPtr("137"),
		Extension:  strPtr("mp4"),
		FormatNote: strPtr("1080p"),
		Resolution: strPtr("1920x1080"),
		VCodec:     strPtr("avc1"),
		ACodec:     strPtr("none"),
		FileSize:   intPtr(50_000_000),
	})

	if got.ID != "137" || got.Ext != "mp4" || got.Note != "1080p" {
		t.Errorf("format identity fields: %+v", got)
	}
	if got.Resolution != "1920x1080" || got.VCodec != "avc1" || got.ACodec != "none" {
		t.Errorf("stream fields: %+v", got)
	}
	if got.Filesize != 50_000_000 {
		t.Errorf("filesize = %d, want 50000000", got.Filesize)
	}
}

func TestTranslateFormat_ApproxSizeFallback(t *testing.T) {
	got := translateFormat(&ytdlp.ExtractedFormat{
		FormatID:       strPtr("140"),
		FileSizeApprox: intPtr(3_000_000),
	})
	if got.Filesize != 3_000_000 {
		t.Errorf("filesize = %d, want approx fallback 3000000", got.Filesize)
	}

	got = translateFormat(&ytdlp.ExtractedFormat{
		FormatID:       strPtr("140"),
		FileSize:       intPtr(2_000_000),
		FileSizeApprox: intPtr(3_000_000),
	})
	if got.Filesize != 2_000_000 {
		t.Errorf("filesize = %d, exact size must win over approx", got.Filesize)
	}
}

func TestTranslateFormat_MissingFields(t *testing.T) {
	got := translateFormat(&ytdlp.ExtractedFormat{})
	if got.ID != "" || got.Ext != "" || got.Filesize != 0 {
		t.Errorf("expected zero values for absent fields, got %+v", got)
	}
}

func TestTranslateProgress_StatusMapping(t *testing.T) {
	tests := []struct {
		in   ytdlp.ProgressStatus
		want ProgressStatus
	}{
		{ytdlp.ProgressStatusDownloading, ProgressDownloading},
		{ytdlp.ProgressStatusFinished, ProgressFinished},
		{ytdlp.ProgressStatusError, ProgressError},
	}
	for _, tt := range tests {
		ev := translateProgress(ytdlp.ProgressUpdate{Status: tt.in})
		if ev.Status != tt.want {
			t.Errorf("status %q mapped to %q, want %q", tt.in, ev.Status, tt.want)
		}
	}
}

func TestSpeedTracker(t *testing.T) {
	start := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	var s speedTracker

	// First sample: one MB in one second since the download started.
	speed := s.sample(1<<20, start, start.Add(time.Second))
	if speed != "1.0MB/s" {
		t.Errorf("first sample = %q, want 1.0MB/s", speed)
	}

	// Second sample: two more MB in the next second. The instantaneous
	// rate doubles even though the cumulative average would read 1.5.
	speed = s.sample(3<<20, start, start.Add(2*time.Second))
	if speed != "2.0MB/s" {
		t.Errorf("second sample = %q, want 2.0MB/s", speed)
	}

	// A stalled transfer reads zero, not the historical average.
	speed = s.sample(3<<20, start, start.Add(3*time.Second))
	if speed != "0.0MB/s" {
		t.Errorf("stalled sample = %q, want 0.0MB/s", speed)
	}
}

func TestSpeedTracker_NoTimeBase(t *testing.T) {
	var s speedTracker
	if speed := s.sample(1<<20, time.Time{}, time.Now()); speed != "" {
		t.Errorf("sample without any time base = %q, want empty", speed)
	}
}
