// Package images derives image locators from opaque seed strings.
// Nothing here fetches or validates the resulting URLs.
package images

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL serves seeded placeholder photos.
const DefaultBaseURL = "https://picsum.photos"

// DefaultSize is the square edge length requested for feed images.
const DefaultSize = 800

// Source builds locators of the form <base>/seed/<seed>/<size>/<size>.
type Source struct {
	BaseURL string
	Size    int
}

// NewSource returns a Source, falling back to the defaults for empty values.
func NewSource(baseURL string) Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Source{BaseURL: strings.TrimRight(baseURL, "/"), Size: DefaultSize}
}

// Locator returns the image locator for seed.
func (s Source) Locator(seed string) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	size := s.Size
	if size <= 0 {
		size = DefaultSize
	}
	return fmt.Sprintf("%s/seed/%s/%d/%d", base, url.PathEscape(seed), size, size)
}
