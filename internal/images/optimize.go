package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

const (
	// Telegram downscales anything larger anyway, so oversized provider
	// output is re-encoded before upload.
	maxUploadBytes = 5 << 20
	jpegQuality    = 85
)

// Optimize re-encodes an image as JPEG when the raw provider output is
// too large to send directly. Small images pass through untouched so
// already-compressed JPEGs are not recompressed.
func Optimize(data []byte) ([]byte, error) {
	if len(data) <= maxUploadBytes {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("images: decode for optimize: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("images: encode jpeg: %w", err)
	}

	out := buf.Bytes()
	if len(out) >= len(data) {
		return data, nil
	}
	return out, nil
}
