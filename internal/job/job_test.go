package job

import (
	"context"
	"testing"
	"time"

	"github.com/mediagrab/backend/internal/store"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusQueued, false},
		{StatusStarting, false},
		{StatusDownloading, false},
		{StatusFinished, false},
		{StatusCompleted, true},
		{StatusError, true},
		{StatusNotFound, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.expected {
			t.Errorf("IsTerminal() for status %s = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestRecord_SinglePayload(t *testing.T) {
	records := []Record{
		Queued("a"),
		Starting("a"),
		Downloading("a", Progress{Percent: 40, Downloaded: 4, Total: 10}),
		Completed("a", Result{Path: "/tmp/x.mp4", Size: 10}),
		Failed("a", "boom"),
	}

	for _, rec := range records {
		populated := 0
		if rec.Progress != nil {
			populated++
		}
		if rec.Result != nil {
			populated++
		}
		if rec.Error != "" {
			populated++
		}
		if populated > 1 {
			t.Errorf("record with status %s has %d payloads populated", rec.Status, populated)
		}
	}
}

func TestStore_SaveGet(t *testing.T) {
	s := NewStore(store.NewMemory(), time.Minute, time.Hour)
	ctx := context.Background()

	rec := Downloading("job-1", Progress{Percent: 12, Downloaded: 12, Total: 100})
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusDownloading {
		t.Errorf("expected status downloading, got %s", got.Status)
	}
	if got.Progress == nil || got.Progress.Percent != 12 {
		t.Errorf("expected progress percent 12, got %+v", got.Progress)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore(store.NewMemory(), time.Minute, time.Hour)

	_, err := s.Get(context.Background(), "absent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ArtifactPath(t *testing.T) {
	s := NewStore(store.NewMemory(), time.Minute, time.Hour)
	ctx := context.Background()

	if err := s.SaveArtifactPath(ctx, "job-2", "/tmp/video.mp4"); err != nil {
		t.Fatalf("SaveArtifactPath failed: %v", err)
	}

	path, err := s.ArtifactPath(ctx, "job-2")
	if err != nil {
		t.Fatalf("ArtifactPath failed: %v", err)
	}
	if path != "/tmp/video.mp4" {
		t.Errorf("expected /tmp/video.mp4, got %s", path)
	}

	if _, err := s.ArtifactPath(ctx, "job-3"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for absent path, got %v", err)
	}
}

func TestStore_TTLSelection(t *testing.T) {
	mem := store.NewMemory()
	s := NewStore(mem, 50*time.Millisecond, time.Hour)
	ctx := context.Background()

	// Transient records expire with the short TTL.
	if err := s.Save(ctx, Queued("short")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Completed records survive the short window.
	if err := s.Save(ctx, Completed("long", Result{Path: "/tmp/a.mp3", Size: 1})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := s.Get(ctx, "short"); err != ErrNotFound {
		t.Errorf("expected transient record to expire, got %v", err)
	}
	if _, err := s.Get(ctx, "long"); err != nil {
		t.Errorf("expected completed record to survive, got %v", err)
	}
}
