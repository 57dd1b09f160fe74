package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/foodwizard/bot/core/logger"
)

const hfInferenceBase = "https://router.huggingface.co/hf-inference/models/"

// hfModels are tried in order: the schnell variant is fast but busier,
// SDXL is slower and serves as the in-provider fallback.
var hfModels = []struct {
	id    string
	steps int
}{
	{"black-forest-labs/FLUX.1-schnell", 4},
	{"stabilityai/stable-diffusion-xl-base-1.0", 25},
}

// HuggingFace renders images through the HF inference router. Requires
// an API token; without one the provider should not be put in the chain.
type HuggingFace struct {
	token string
	http  *http.Client
}

func NewHuggingFace(token string, httpClient *http.Client) *HuggingFace {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &HuggingFace{token: token, http: httpClient}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	NumInferenceSteps int `json:"num_inference_steps"`
}

func (h *HuggingFace) Generate(ctx context.Context, dish, description string) ([]byte, error) {
	prompt := buildPrompt(dish, description)

	var lastErr error
	for _, model := range hfModels {
		data, err := h.generateWith(ctx, model.id, model.steps, prompt)
		if err == nil {
			logger.Debug(ctx, "img", "generated",
				slog.String("provider", h.Name()),
				slog.String("model", model.id),
				slog.String("dish", dish),
				slog.Int("bytes", len(data)),
			)
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Debug(ctx, "img", "model.failed",
			slog.String("provider", h.Name()),
			slog.String("model", model.id),
			slog.String("err", err.Error()),
		)
	}
	return nil, lastErr
}

func (h *HuggingFace) generateWith(ctx context.Context, model string, steps int, prompt string) ([]byte, error) {
	payload, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: hfParameters{NumInferenceSteps: steps},
	})
	if err != nil {
		return nil, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hfInferenceBase+model, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("huggingface: %s status %d: %s", model, resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("huggingface: read body: %w", err)
	}
	if len(data) < minImageBytes {
		return nil, fmt.Errorf("huggingface: response too small (%d bytes)", len(data))
	}
	return data, nil
}
