package urlutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ListingPath is the path of the paginated listing on the target site
const ListingPath = "blocklist"

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// PageURL builds the listing URL for the given page number, e.g.
// https://uablocklist.com/blocklist?page=3
func PageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Sprintf("%s/%s?page=%d", strings.TrimRight(base, "/"), ListingPath, page)
	}

	u = u.JoinPath(ListingPath)
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}
