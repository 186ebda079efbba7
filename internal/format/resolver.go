// Package format turns the engine's raw encoding metadata into the
// bounded, stably-ordered catalog of selectable formats clients choose
// from. Entries are tagged with a category prefix that the download
// package later decodes back into an engine format spec.
package format

import (
	"context"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mediagrab/backend/internal/download"
	"github.com/mediagrab/backend/internal/engine"
	apperrors "github.com/mediagrab/backend/internal/errors"
	"github.com/mediagrab/backend/internal/logger"
	"github.com/mediagrab/backend/internal/validate"
)

// Kind classifies what streams an encoding carries.
type Kind string

const (
	KindVideoAndAudio Kind = "video_and_audio"
	KindVideoOnly     Kind = "video_only"
	KindAudioOnly     Kind = "audio_only"
)

const (
	// DefaultMaxFormats caps the catalog after sorting.
	DefaultMaxFormats = 20

	// minKnownSize filters out placeholder streams. Entries with an
	// unknown size pass through.
	minKnownSize = 1024
)

// Descriptor is one selectable encoding. The ID carries the category
// prefix and is what clients pass back as a format selector.
type Descriptor struct {
	ID         string `json:"id"`
	Ext        string `json:"ext"`
	Label      string `json:"label,omitempty"`
	Kind       Kind   `json:"kind"`
	Resolution string `json:"resolution,omitempty"`
	Filesize   int64  `json:"filesize,omitempty"`
	SizeText   string `json:"size_text,omitempty"`
	VCodec     string `json:"vcodec,omitempty"`
	ACodec     string `json:"acodec,omitempty"`
}

// Catalog is the result of one format query.
type Catalog struct {
	Title   string       `json:"title"`
	Formats []Descriptor `json:"formats"`
}

// Resolver queries the fetch engine for encoding metadata and normalizes
// it into a catalog.
type Resolver struct {
	engine     engine.Engine
	log        *logger.Logger
	maxFormats int
}

// NewResolver creates a resolver. maxFormats <= 0 selects the default cap.
func NewResolver(eng engine.Engine, maxFormats int) *Resolver {
	if maxFormats <= 0 {
		maxFormats = DefaultMaxFormats
	}
	return &Resolver{
		engine:     eng,
		log:        logger.Default().WithComponent("format"),
		maxFormats: maxFormats,
	}
}

// List probes the URL and returns the filtered, ranked catalog. Cookie
// material is passed through to the engine untouched.
func (r *Resolver) List(ctx context.Context, url, cookies string) (*Catalog, error) {
	if err := validate.URL(url); err != nil {
		return nil, err
	}

	cookiesFile, cleanup, err := engine.MaterializeCookies(cookies)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable("failed to prepare credentials").WithCause(err)
	}
	defer cleanup()

	info, err := r.engine.Probe(ctx, strings.TrimSpace(url), cookiesFile)
	if err != nil {
		r.log.Warn(ctx, "format probe failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, apperrors.UpstreamUnavailable("could not retrieve media information").WithCause(err)
	}
	if info == nil {
		return nil, apperrors.UpstreamUnavailable("could not retrieve media information")
	}

	descriptors := normalize(info.Formats)
	if len(descriptors) == 0 {
		return nil, apperrors.NoFormatsFound()
	}

	sortDescriptors(descriptors)
	if len(descriptors) > r.maxFormats {
		descriptors = descriptors[:r.maxFormats]
	}

	return &Catalog{Title: info.Title, Formats: descriptors}, nil
}

// normalize filters noise entries and tags each surviving format with its
// category prefix.
func normalize(raw []engine.Format) []Descriptor {
	out := make([]Descriptor, 0, len(raw))
	for _, f := range raw {
		if f.ID == "" {
			continue
		}
		if f.Filesize > 0 && f.Filesize < minKnownSize {
			continue
		}

		kind, ok := classify(f)
		if !ok {
			continue
		}

		d := Descriptor{
			ID:         taggedID(kind, f.ID),
			Ext:        f.Ext,
			Label:      f.Note,
			Kind:       kind,
			Resolution: f.Resolution,
			Filesize:   f.Filesize,
			VCodec:     codecOrEmpty(f.VCodec),
			ACodec:     codecOrEmpty(f.ACodec),
		}
		if f.Filesize > 0 {
			d.SizeText = humanize.Bytes(uint64(f.Filesize))
		}
		out = append(out, d)
	}
	return out
}

// classify maps codec presence onto a kind. Entries carrying neither
// stream are dropped.
func classify(f engine.Format) (Kind, bool) {
	video := hasCodec(f.VCodec)
	audio := hasCodec(f.ACodec)
	switch {
	case video && audio:
		return KindVideoAndAudio, true
	case video:
		return KindVideoOnly, true
	case audio:
		return KindAudioOnly, true
	default:
		return "", false
	}
}

func hasCodec(c string) bool {
	c = strings.TrimSpace(c)
	return c != "" && c != "none"
}

func codecOrEmpty(c string) string {
	if !hasCodec(c) {
		return ""
	}
	return c
}

func taggedID(kind Kind, id string) string {
	switch kind {
	case KindVideoAndAudio:
		return download.PrefixVideoAudio + id
	case KindVideoOnly:
		return download.PrefixVideo + id
	default:
		return download.PrefixAudio + id
	}
}

// sortDescriptors orders the catalog best-quality-first: combined streams
// ahead of split streams, then by resolution height, then by size.
func sortDescriptors(ds []Descriptor) {
	sort.SliceStable(ds, func(i, j int) bool {
		pi, pj := kindPriority(ds[i].Kind), kindPriority(ds[j].Kind)
		if pi != pj {
			return pi > pj
		}
		hi, hj := resolutionHeight(ds[i].Resolution), resolutionHeight(ds[j].Resolution)
		if hi != hj {
			return hi > hj
		}
		return ds[i].Filesize > ds[j].Filesize
	})
}

func kindPriority(k Kind) int {
	switch k {
	case KindVideoAndAudio:
		return 3
	case KindVideoOnly:
		return 2
	case KindAudioOnly:
		return 1
	default:
		return 0
	}
}

// resolutionHeight extracts the height from strings like "1920x1080" or
// "1080p". Unparseable resolutions rank as 0.
func resolutionHeight(res string) int {
	res = strings.TrimSpace(res)
	if res == "" {
		return 0
	}
	if i := strings.LastIndexByte(res, 'x'); i >= 0 {
		res = res[i+1:]
	}
	n := 0
	seen := false
	for _, ch := range res {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}
