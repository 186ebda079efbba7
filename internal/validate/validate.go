// Package validate holds the input validation shared by the submit and
// format-catalog paths.
package validate

import (
	"net/url"
	"strings"

	apperrors "github.com/mediagrab/backend/internal/errors"
)

// URL checks that raw parses as an absolute http(s) URL with a host.
// Returns an AppError suitable for direct surfacing to the client.
func URL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperrors.InvalidURL("url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.InvalidURL("invalid URL").WithCause(err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.InvalidURL("URL scheme must be http or https")
	}
	if parsed.Host == "" {
		return apperrors.InvalidURL("URL has no host")
	}

	return nil
}
