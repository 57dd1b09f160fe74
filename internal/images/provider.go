// Package images generates dish photos for finished recipes. Several
// providers are tried in a fixed order until one returns a usable
// image, so a flaky free backend degrades quality, not availability.
package images

import (
	"context"
	"fmt"
	"strings"
)

// minImageBytes rejects error pages and truncated responses that some
// providers return with status 200.
const minImageBytes = 1024

// Provider produces one image for a dish. Implementations are safe for
// concurrent use.
type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Generate renders a photo of the dish. The description gives the
	// prompt extra context and may be empty.
	Generate(ctx context.Context, dish, description string) ([]byte, error)
}

// buildPrompt turns a dish into a food-photography prompt. Prompts are
// kept short because URL-based providers carry them in the query string.
func buildPrompt(dish, description string) string {
	prompt := fmt.Sprintf("professional food photography, %s", dish)
	if description != "" {
		prompt += ", " + description
	}
	prompt += ", appetizing, high detail, soft natural light, restaurant plating"
	if runes := []rune(prompt); len(runes) > 400 {
		prompt = string(runes[:400])
	}
	return strings.TrimSpace(prompt)
}
