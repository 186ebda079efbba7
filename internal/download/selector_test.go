package download

import (
	"testing"
)

func TestDecodeSelector(t *testing.T) {
	tests := []struct {
		name         string
		selector     string
		wantSpec     string
		extractAudio bool
	}{
		{"combined stream", "video_audio_18", "18", false},
		{"video only merges best audio", "video_137", "137+bestaudio", false},
		{"audio only", "audio_140", "140", true},
		{"legacy mp4", "mp4", "best[ext=mp4]/best[height<=720]/best", false},
		{"legacy mp3", "mp3", "bestaudio[ext=m4a]/bestaudio/best", true},
		{"unknown falls back", "something-else", "bestvideo[height<=1080]+bestaudio/best", false},
		{"empty falls back", "", "bestvideo[height<=1080]+bestaudio/best", false},
		{"whitespace trimmed", "  audio_251  ", "251", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DecodeSelector(tt.selector)
			if plan.Spec != tt.wantSpec {
				t.Errorf("Spec = %q, want %q", plan.Spec, tt.wantSpec)
			}
			if plan.ExtractAudio != tt.extractAudio {
				t.Errorf("ExtractAudio = %v, want %v", plan.ExtractAudio, tt.extractAudio)
			}
		})
	}
}

func TestDecodeSelector_PrefixOrder(t *testing.T) {
	// video_audio_ shares a prefix with video_; the longer prefix must win.
	plan := DecodeSelector("video_audio_22")
	if plan.Spec != "22" {
		t.Errorf("expected combined id 22, got %q", plan.Spec)
	}
	if plan.ExtractAudio {
		t.Error("combined streams must not be postprocessed to audio")
	}
}

func TestContainsAudioToken(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"bestaudio[ext=m4a]/bestaudio/best", true},
		{"bestaudio", true},
		{"251", false},
		{"best[ext=mp4]/best[height<=720]/best", false},
		{"137+bestaudio", true},
		{"OPUS", true},
	}

	for _, tt := range tests {
		if got := containsAudioToken(tt.spec); got != tt.want {
			t.Errorf("containsAudioToken(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}
