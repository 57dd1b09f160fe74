package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/foodwizard/bot/core/logger"
)

// Chain tries providers in order and returns the first image produced.
// The error on total failure aggregates every provider's failure so the
// log shows why each backend was skipped.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Generate(ctx context.Context, dish, description string) ([]byte, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("images: no providers configured")
	}

	var errs *multierror.Error
	for _, p := range c.providers {
		if ctx.Err() != nil {
			errs = multierror.Append(errs, ctx.Err())
			break
		}
		data, err := p.Generate(ctx, dish, description)
		if err == nil {
			return data, nil
		}
		logger.Warn(ctx, "img", "provider.failed",
			slog.String("provider", p.Name()),
			slog.String("dish", dish),
			slog.String("err", err.Error()),
		)
		errs = multierror.Append(errs, err)
	}
	return nil, fmt.Errorf("images: all providers failed: %w", errs.ErrorOrNil())
}
