package engine

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

const progressInterval = 500 * time.Millisecond

// YTDLP drives yt-dlp (via go-ytdlp) as the fetch engine.
type YTDLP struct{}

// NewYTDLP creates a yt-dlp backed engine. The yt-dlp binary must be on
// PATH; Ping reports whether it is.
func NewYTDLP() *YTDLP {
	return &YTDLP{}
}

// Ping checks that the yt-dlp binary is available.
func (e *YTDLP) Ping(ctx context.Context) error {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return fmt.Errorf("yt-dlp binary not found: %w", err)
	}
	return nil
}

// Fetch runs a blocking download, relaying progress callbacks, and returns
// the engine's predicted output metadata.
func (e *YTDLP) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	dl := ytdlp.New().
		NoCheckCertificates().
		Output(filepath.Join(req.OutputDir, "%(title)s.%(ext)s"))

	if req.Format != "" {
		dl = dl.Format(req.Format)
	}
	if req.CookiesFile != "" {
		dl = dl.Cookies(req.CookiesFile)
	}
	if req.ExtractAudio {
		dl = dl.ExtractAudio()
		if req.AudioFormat != "" {
			dl = dl.AudioFormat(req.AudioFormat)
		}
		if req.AudioQuality != "" {
			dl = dl.AudioQuality(req.AudioQuality)
		}
	}

	if req.Progress != nil {
		var speed speedTracker
		dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			ev := translateProgress(update)
			if ev.Status == ProgressDownloading {
				ev.Speed = speed.sample(int64(update.DownloadedBytes), update.Started, time.Now())
			}
			req.Progress(ev)
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp run failed: %w", err)
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted info: %w", err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("yt-dlp returned no extracted info")
	}

	out := &FetchResult{Ext: info[0].Extension}
	if info[0].Filename != nil {
		out.Filename = *info[0].Filename
	}
	if info[0].Title != nil {
		out.Title = *info[0].Title
	}
	return out, nil
}

// Probe extracts metadata without downloading.
func (e *YTDLP) Probe(ctx context.Context, url, cookiesFile string) (*MediaInfo, error) {
	dl := ytdlp.New().
		NoCheckCertificates().
		SkipDownload().
		DumpSingleJSON()

	if cookiesFile != "" {
		dl = dl.Cookies(cookiesFile)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %w", err)
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted info: %w", err)
	}
	if len(info) == 0 {
		return nil, nil
	}

	mi := &MediaInfo{}
	if info[0].Title != nil {
		mi.Title = *info[0].Title
	}
	for _, f := range info[0].Formats {
		if f == nil {
			continue
		}
		mi.Formats = append(mi.Formats, translateFormat(f))
	}
	return mi, nil
}

func translateProgress(update ytdlp.ProgressUpdate) ProgressEvent {
	ev := ProgressEvent{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
	}

	switch update.Status {
	case ytdlp.ProgressStatusError:
		ev.Status = ProgressError
	case ytdlp.ProgressStatusFinished:
		ev.Status = ProgressFinished
	default:
		ev.Status = ProgressDownloading
	}

	if eta := update.ETA(); eta > 0 {
		ev.ETA = fmt.Sprintf("%ds", int(eta.Seconds()))
	}

	return ev
}

// speedTracker derives instantaneous transfer speed from consecutive
// progress samples. The first sample averages from the download start,
// every later one uses the delta since the previous callback.
type speedTracker struct {
	lastBytes int64
	lastAt    time.Time
}

func (s *speedTracker) sample(downloaded int64, started, now time.Time) string {
	since, base := s.lastAt, s.lastBytes
	s.lastBytes, s.lastAt = downloaded, now

	if since.IsZero() {
		if started.IsZero() {
			return ""
		}
		since, base = started, 0
	}

	elapsed := now.Sub(since).Seconds()
	delta := downloaded - base
	if elapsed <= 0 || delta < 0 {
		return ""
	}
	return fmt.Sprintf("%.1fMB/s", float64(delta)/elapsed/1024/1024)
}

func translateFormat(f *ytdlp.ExtractedFormat) Format {
	out := Format{}
	if f.FormatID != nil {
		out.ID = *f.FormatID
	}
	if f.Extension != nil {
		out.Ext = *f.Extension
	}
	if f.FormatNote != nil {
		out.Note = *f.FormatNote
	}
	if f.Resolution != nil {
		out.Resolution = *f.Resolution
	}
	if f.VCodec != nil {
		out.VCodec = *f.VCodec
	}
	if f.ACodec != nil {
		out.ACodec = *f.ACodec
	}
	if f.FileSize != nil {
		out.Filesize = int64(*f.FileSize)
	} else if f.FileSizeApprox != nil {
		out.Filesize = int64(*f.FileSizeApprox)
	}
	return out
}
