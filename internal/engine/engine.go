// Package engine defines the boundary to the media fetch engine: the
// external tool that extracts metadata and performs the actual
// download/transcode for a source URL.
package engine

import (
	"context"
)

// ProgressStatus is the coarse state reported by the engine mid-fetch.
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
	ProgressError       ProgressStatus = "error"
)

// ProgressEvent is one engine progress callback. TotalBytes may be zero or
// negative when the engine does not know the final size.
type ProgressEvent struct {
	Status          ProgressStatus
	DownloadedBytes int64
	TotalBytes      int64
	Speed           string
	ETA             string
}

// ProgressFunc receives progress events during a fetch. Callbacks may be
// delivered out of order; callers must not rely on monotonic progress.
type ProgressFunc func(ProgressEvent)

// FetchRequest describes one download.
type FetchRequest struct {
	URL    string
	Format string

	// Audio extraction postprocessing: re-encode the download to the
	// given audio container/quality after the transfer finishes.
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	OutputDir   string
	CookiesFile string
	Progress    ProgressFunc
}

// FetchResult carries the metadata the engine reports after a fetch. The
// reported filename is the engine's prediction and may not be the final
// path once postprocessing has run.
type FetchResult struct {
	Filename string
	Title    string
	Ext      string
}

// Format is one raw encoding reported by the engine for a URL.
type Format struct {
	ID         string
	Ext        string
	Note       string
	Resolution string
	VCodec     string
	ACodec     string
	// Filesize is the exact or approximate size in bytes, 0 if unknown.
	Filesize int64
}

// MediaInfo is the probed metadata for a URL.
type MediaInfo struct {
	Title   string
	Formats []Format
}

// Engine is the fetch engine boundary. Fetch blocks for the duration of
// the download; Probe only extracts metadata.
type Engine interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
	Probe(ctx context.Context, url, cookiesFile string) (*MediaInfo, error)
}
