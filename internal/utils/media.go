package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ErrUnsupportedMedia is returned for content that is not an accepted image.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// DecodeMediaPayload decodes an inline base64 or data URL payload and returns
// the raw bytes together with the image extension. Payloads that are not a
// recognised image are rejected.
func DecodeMediaPayload(payload string) ([]byte, string, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, "", fmt.Errorf("empty media payload")
	}

	mimeType, base64Payload := SplitDataURL(trimmed)
	base64Payload = strings.TrimSpace(base64Payload)
	if base64Payload == "" {
		return nil, "", fmt.Errorf("empty base64 payload")
	}

	data, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}

	ext, err := ResolveImageExtension(mimeType, data)
	if err != nil {
		return nil, "", err
	}
	return data, ext, nil
}

// ResolveImageExtension sniffs data and returns its image extension. A
// declared mime type is only a claim: when it names a specific type it must
// agree with the sniffed content.
func ResolveImageExtension(declared string, data []byte) (string, error) {
	ext := DetectExtension(data)
	if ext == "" {
		return "", ErrUnsupportedMedia
	}
	if isGenericMime(declared) {
		return ext, nil
	}
	if ExtensionFromMime(declared) != ext {
		return "", fmt.Errorf("%w: declared %q but content is %s", ErrUnsupportedMedia, declared, ext)
	}
	return ext, nil
}

func isGenericMime(mimeType string) bool {
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "", "application/octet-stream":
		return true
	}
	return false
}

// SplitDataURL separates "data:<mime>;base64,<payload>". Plain base64 input
// yields an empty mime type.
func SplitDataURL(value string) (string, string) {
	if !strings.HasPrefix(value, "data:") {
		return "", value
	}

	value = strings.TrimPrefix(value, "data:")
	parts := strings.SplitN(value, ";base64,", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// DetectExtension sniffs the content and returns an image extension, or ""
// when the bytes are not an image.
func DetectExtension(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return ExtensionFromMime(http.DetectContentType(data))
}

// ExtensionFromMime maps an image mime type to a file extension. Only raster
// formats the content sniffer recognises are listed.
func ExtensionFromMime(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	switch strings.ToLower(mimeType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	default:
		return ""
	}
}
