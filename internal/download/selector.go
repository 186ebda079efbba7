package download

import (
	"strings"
)

// Category prefixes on format selectors, applied by the format catalog and
// decoded here.
const (
	PrefixVideoAudio = "video_audio_"
	PrefixVideo      = "video_"
	PrefixAudio      = "audio_"
)

// Target of the audio extraction postprocessor.
const (
	targetAudioFormat  = "mp3"
	targetAudioQuality = "192K"
)

// Fallback format query when the selector carries no usable information.
const fallbackFormatSpec = "bestvideo[height<=1080]+bestaudio/best"

// Legacy container selectors kept for older clients.
const (
	legacyVideoFormatSpec = "best[ext=mp4]/best[height<=720]/best"
	legacyAudioFormatSpec = "bestaudio[ext=m4a]/bestaudio/best"
)

// audioTokens are substrings of a format spec that indicate an audio-only
// download. The catalog's category prefix is authoritative when present;
// this lexical check only decides the untagged legacy paths.
var audioTokens = []string{"audio", "m4a", "mp3", "opus", "aac"}

// FormatPlan is a decoded selector: the engine format spec plus whether to
// run audio extraction postprocessing afterwards.
type FormatPlan struct {
	Spec         string
	ExtractAudio bool
}

// DecodeSelector turns a client-facing format selector into a FormatPlan.
// Selectors tagged by the format catalog carry a category prefix; bare
// mp4/mp3 selectors are legacy; anything else falls back to a best-quality
// merged query with no postprocessing.
func DecodeSelector(selector string) FormatPlan {
	selector = strings.TrimSpace(selector)

	switch {
	// video_audio_ must be checked before video_: both share the prefix.
	case strings.HasPrefix(selector, PrefixVideoAudio):
		return FormatPlan{Spec: strings.TrimPrefix(selector, PrefixVideoAudio)}

	case strings.HasPrefix(selector, PrefixVideo):
		return FormatPlan{Spec: strings.TrimPrefix(selector, PrefixVideo) + "+bestaudio"}

	case strings.HasPrefix(selector, PrefixAudio):
		return FormatPlan{Spec: strings.TrimPrefix(selector, PrefixAudio), ExtractAudio: true}

	case selector == "mp4":
		return FormatPlan{
			Spec:         legacyVideoFormatSpec,
			ExtractAudio: containsAudioToken(legacyVideoFormatSpec),
		}

	case selector == "mp3":
		return FormatPlan{
			Spec:         legacyAudioFormatSpec,
			ExtractAudio: containsAudioToken(legacyAudioFormatSpec),
		}

	default:
		return FormatPlan{Spec: fallbackFormatSpec}
	}
}

func containsAudioToken(spec string) bool {
	lower := strings.ToLower(spec)
	for _, token := range audioTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
