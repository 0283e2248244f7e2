package directus

import (
	"encoding/json"
	"strings"
)

// processThumbnail resolves a raw thumbnail value into an absolute asset URL.
// The store hands thumbnails back in several shapes depending on how the
// field list was requested: absent/null, an object with a file id, a bare
// file id string, or an already-absolute URL. Every input maps to a URL; when
// the value is absent or unrecognized the default asset is used.
//
// The function is idempotent: feeding its own output back in returns the same
// URL, because an absolute URL is passed through unchanged.
func (c *Client) processThumbnail(raw json.RawMessage) string {
	fallback := c.AssetURL(c.defaultThumbnailID)

	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}

	// Object shape: {"id": "<file-id>", ...}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return c.AssetURL(obj.ID)
	}

	// String shape: either a full URL or a bare file id.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return s
		}
		return c.AssetURL(s)
	}

	return fallback
}
