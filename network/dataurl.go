package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// IsDataURL reports whether ref is a data: URL.
func IsDataURL(ref string) bool {
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Charset   string
	Data      []byte
}

// ParseDataURL decodes data:[<mediatype>][;base64],<data>.
func ParseDataURL(ref string) (*DataURL, error) {
	if !IsDataURL(ref) {
		return nil, errors.New("not a data URL")
	}
	meta, data, ok := strings.Cut(ref[5:], ",")
	if !ok {
		return nil, errors.New("invalid data URL: missing comma")
	}

	d := &DataURL{MediaType: "text/plain", Charset: "US-ASCII"}
	encoded := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case strings.EqualFold(part, "base64"):
			encoded = true
		case len(part) > 8 && strings.EqualFold(part[:8], "charset="):
			d.Charset = part[8:]
		case i == 0 && part != "":
			d.MediaType = part
		}
	}

	if encoded {
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		d.Data = raw
		return d, nil
	}
	raw, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape data: %w", err)
	}
	d.Data = []byte(raw)
	return d, nil
}
