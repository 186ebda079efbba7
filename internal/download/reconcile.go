package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extensions probed when the predicted output path does not exist. The
// engine's reported filename predates postprocessing, which may have
// remuxed or re-encoded into a different container.
var alternateExtensions = []string{".mp3", ".m4a", ".opus", ".mp4", ".mkv", ".webm"}

// resolveArtifact reconciles the engine's predicted output path with what
// actually landed on disk. For audio jobs it waits a bounded settle delay
// first (postprocessing runs asynchronously relative to the engine call
// returning) and substitutes the target audio extension. A zero-size file
// is deleted and treated as failure.
func (o *Orchestrator) resolveArtifact(predicted string, extractAudio bool) (string, int64, error) {
	if predicted == "" {
		return "", 0, fmt.Errorf("engine did not report an output file")
	}

	path := predicted
	if extractAudio {
		if o.settle > 0 {
			time.Sleep(o.settle)
		}
		path = replaceExt(predicted, "."+targetAudioFormat)
	}

	if !fileExists(path) {
		found := ""
		for _, ext := range alternateExtensions {
			candidate := replaceExt(predicted, ext)
			if fileExists(candidate) {
				found = candidate
				break
			}
		}
		if found == "" {
			return "", 0, fmt.Errorf("downloaded file not found")
		}
		path = found
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("downloaded file not found")
	}
	if info.Size() == 0 {
		os.Remove(path)
		return "", 0, fmt.Errorf("downloaded file is empty")
	}

	return path, info.Size(), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// replaceExt swaps the extension of path, leaving paths without an
// extension untouched except for the suffix append.
func replaceExt(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}
