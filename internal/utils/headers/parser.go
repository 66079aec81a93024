package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into an http.Header.
// Malformed entries are reported together in the returned error; valid ones are still kept.
func ParseHeaders(h []string) (http.Header, error) {
	out := make(http.Header, len(h))
	var bad []string
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			bad = append(bad, hdr)
			continue
		}
		out.Add(key, strings.TrimSpace(value))
	}
	if len(bad) > 0 {
		return out, fmt.Errorf("malformed headers (want \"Key: Value\"): %q", bad)
	}
	return out, nil
}
