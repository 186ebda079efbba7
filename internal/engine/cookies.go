package engine

import (
	"fmt"
	"os"
)

// MaterializeCookies writes cookie text to a transient file the engine can
// consume, returning its path and a cleanup func. The file lives only for
// the duration of one fetch or probe call. An empty cookie string yields
// an empty path and a no-op cleanup.
func MaterializeCookies(cookies string) (string, func(), error) {
	if cookies == "" {
		return "", func() {}, nil
	}

	f, err := os.CreateTemp("", "mediagrab-cookies-*.txt")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create cookies file: %w", err)
	}

	if _, err := f.WriteString(cookies); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write cookies file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to close cookies file: %w", err)
	}

	path := f.Name()
	return path, func() { os.Remove(path) }, nil
}
