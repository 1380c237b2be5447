package archive

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var disallowedNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// DeriveFilename converts a URL into a filesystem-safe PDF filename built
// from its path component: leading and trailing slashes are trimmed, internal
// slashes become hyphens, and every other character outside [a-zA-Z0-9-] is
// removed. The result always ends in ".pdf".
//
// A URL with an empty path yields the degenerate name ".pdf"; distinct URLs
// that differ only in stripped characters collide, and a later job overwrites
// the earlier file. Callers accept both behaviors.
func DeriveFilename(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = strings.Trim(u.Path, "/")
	}
	name = strings.ReplaceAll(name, "/", "-")
	name = disallowedNameChars.ReplaceAllString(name, "")
	return name + ".pdf"
}

// ForceEnglish rewrites rawURL so the server returns English content by
// setting the hl query parameter to "en", overwriting any existing value.
// Scheme, host, path, fragment, and unrelated query parameters are preserved.
// The rewrite is idempotent.
func ForceEnglish(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("hl", "en")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
