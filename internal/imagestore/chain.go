package imagestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/foodwizard/bot/core/logger"
)

// Chain tries uploaders in order. Besides the URL it reports which
// backend took the upload, so callers can record where an image lives.
type Chain struct {
	uploaders []Uploader
}

func NewChain(uploaders ...Uploader) *Chain {
	return &Chain{uploaders: uploaders}
}

func (c *Chain) Upload(ctx context.Context, data []byte, name string) (url, backend string, err error) {
	if len(c.uploaders) == 0 {
		return "", "", fmt.Errorf("imagestore: no backends configured")
	}

	var errs *multierror.Error
	for _, u := range c.uploaders {
		if ctx.Err() != nil {
			errs = multierror.Append(errs, ctx.Err())
			break
		}
		url, err := u.Upload(ctx, data, name)
		if err == nil {
			return url, u.Name(), nil
		}
		logger.Warn(ctx, "img", "upload.failed",
			slog.String("backend", u.Name()),
			slog.String("name", name),
			slog.String("err", err.Error()),
		)
		errs = multierror.Append(errs, err)
	}
	return "", "", fmt.Errorf("imagestore: all backends failed: %w", errs.ErrorOrNil())
}
