package storage

import (
	"testing"
)

func TestArchiveKey(t *testing.T) {
	tests := []struct {
		name  string
		jobID string
		path  string
		want  string
	}{
		{"plain file", "job-1", "/tmp/downloads/song.mp3", "artifacts/job-1/song.mp3"},
		{"nested path", "job-2", "/var/data/deep/clip.webm", "artifacts/job-2/clip.webm"},
		{"spaces preserved", "job-3", "/tmp/My Video.mp4", "artifacts/job-3/My Video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArchiveKey(tt.jobID, tt.path); got != tt.want {
				t.Errorf("ArchiveKey(%q, %q) = %q, want %q", tt.jobID, tt.path, got, tt.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"song.mp3", "audio/mpeg"},
		{"song.M4A", "audio/mp4"},
		{"clip.mp4", "video/mp4"},
		{"clip.webm", "video/webm"},
		{"clip.mkv", "video/x-matroska"},
		{"unknown.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := contentTypeFor(tt.path); got != tt.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNew_StripsScheme(t *testing.T) {
	client, err := New(&Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "artifacts",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client.Bucket() != "artifacts" {
		t.Errorf("bucket = %q", client.Bucket())
	}
}
