package images

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/foodwizard/bot/core/logger"
)

const pollinationsBase = "https://image.pollinations.ai/prompt/"

// Pollinations renders images through the keyless pollinations.ai
// endpoint. The whole request lives in the URL, so the same dish always
// maps to the same seed and the upstream cache can serve repeats.
type Pollinations struct {
	http *http.Client
}

func NewPollinations(httpClient *http.Client) *Pollinations {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Pollinations{http: httpClient}
}

func (p *Pollinations) Name() string { return "pollinations" }

func (p *Pollinations) Generate(ctx context.Context, dish, description string) ([]byte, error) {
	started := time.Now()
	prompt := buildPrompt(dish, description)

	endpoint := fmt.Sprintf("%s%s?width=1024&height=1024&model=flux&seed=%d&nologo=true",
		pollinationsBase, url.PathEscape(prompt), promptSeed(prompt))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pollinations: build request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollinations: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pollinations: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("pollinations: read body: %w", err)
	}
	if len(data) < minImageBytes {
		return nil, fmt.Errorf("pollinations: response too small (%d bytes)", len(data))
	}

	logger.Debug(ctx, "img", "generated",
		slog.String("provider", p.Name()),
		slog.String("dish", dish),
		slog.Int("bytes", len(data)),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(started)).Milliseconds()),
	)
	return data, nil
}

// promptSeed derives a stable seed from the prompt so identical dishes
// render identical images.
func promptSeed(prompt string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return h.Sum32() % 1000000
}
