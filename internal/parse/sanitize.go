package parse

import (
	"encoding/json"
	"strings"
)

const (
	// MaxInlineImageBytes is the largest inline image payload kept verbatim.
	MaxInlineImageBytes = 1024
	// MaxTextChars is the longest message/text field kept verbatim.
	MaxTextChars = 10000

	ImagePlaceholder = "[image data omitted]"
	TruncatedMarker  = "...(truncated)"
)

var imagePayloadKeys = map[string]bool{
	"data":      true,
	"value":     true,
	"url":       true,
	"image_url": true,
	"base64":    true,
	"bytes":     true,
}

var imageFieldKeys = map[string]bool{
	"image":      true,
	"imageData":  true,
	"image_data": true,
	"imageUrl":   true,
}

var textKeys = map[string]bool{
	"text":     true,
	"content":  true,
	"message":  true,
	"value":    true,
	"result":   true,
	"output":   true,
	"thinking": true,
}

// Sanitize walks a decoded JSON tree and applies the redaction policy:
// large inline images become ImagePlaceholder and long text fields are
// truncated with TruncatedMarker. Maps and slices are rewritten in place;
// the (possibly replaced) root is returned.
func Sanitize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		sanitizeObject(node)
		return node
	case []any:
		for i, item := range node {
			node[i] = Sanitize(item)
		}
		return node
	default:
		return v
	}
}

func sanitizeObject(m map[string]any) {
	image := isImageLike(m)
	for k, v := range m {
		if (image && imagePayloadKeys[k]) || imageFieldKeys[k] {
			if inlineSize(v) > MaxInlineImageBytes {
				m[k] = ImagePlaceholder
				continue
			}
		}
		switch val := v.(type) {
		case string:
			if textKeys[k] {
				m[k] = TruncateText(val, MaxTextChars)
			}
		case map[string]any, []any:
			m[k] = Sanitize(val)
		}
	}
}

func isImageLike(m map[string]any) bool {
	for _, k := range []string{"type", "kind"} {
		if s, ok := m[k].(string); ok && strings.EqualFold(s, "image") {
			return true
		}
	}
	for _, k := range []string{"media_type", "mediaType", "mimeType", "mime_type"} {
		if s, ok := m[k].(string); ok && strings.HasPrefix(s, "image/") {
			return true
		}
	}
	return false
}

func inlineSize(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		return len(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return 0
		}
		return len(b)
	default:
		return 0
	}
}
