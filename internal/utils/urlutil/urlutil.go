package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
var multipleDots = regexp.MustCompile(`\.{2,}`)

// GetDomainFromURL extracts the hostname from a URL
func GetDomainFromURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("error parsing URL '%s': %v", rawURL, err)
	}

	domain := parsedURL.Hostname()
	if domain == "" {
		return "", fmt.Errorf("no domain found in URL '%s'", rawURL)
	}

	return domain, nil
}

// ArtifactBaseName derives a filesystem-safe base name for a work item's
// artifact from the final non-empty segment of the URL path. A URL with an
// empty path falls back to the cleaned hostname.
func ArtifactBaseName(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return CleanPath(rawURL)
	}

	segments := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	base := segments[len(segments)-1]
	if base == "" {
		if domain, err := GetDomainFromURL(rawURL); err == nil {
			base = domain
		}
	}

	return CleanPath(base)
}

// CleanPath cleans a path component for safe filesystem use
func CleanPath(path string) string {
	if path == "" {
		return "unknown"
	}

	path = strings.TrimPrefix(path, "http://")
	path = strings.TrimPrefix(path, "https://")

	path = invalidChars.ReplaceAllString(path, "_")
	path = multipleDots.ReplaceAllString(path, ".")
	path = strings.Trim(path, ". ")
	path = strings.ReplaceAll(path, " ", "_")

	if path == "" || path == "." || path == ".." {
		return "unknown"
	}

	// Limit length
	if len(path) > 100 {
		path = path[:100]
	}

	return path
}
