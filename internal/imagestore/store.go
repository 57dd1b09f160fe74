// Package imagestore persists generated images and hands back public
// URLs. Backends form an ordered chain like image generation does: S3
// first, local disk as the always-available fallback.
package imagestore

import "context"

// Uploader stores one image and returns a URL Telegram can fetch.
type Uploader interface {
	// Name identifies the backend in logs and the image cache.
	Name() string
	// Upload stores data under the given object name.
	Upload(ctx context.Context, data []byte, name string) (url string, err error)
}
