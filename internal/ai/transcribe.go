package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/foodwizard/bot/core/logger"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends a voice recording to the whisper endpoint and
// returns the recognized text. Telegram voice notes come as OGG/Opus,
// which the endpoint accepts as-is.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("ai: empty audio")
	}
	if filename == "" {
		filename = "voice.ogg"
	}

	var lastErr error
	for attempt := 0; attempt < len(c.cfg.APIKeys); attempt++ {
		key, idx := c.currentKey()
		text, retryable, err := c.doTranscribe(ctx, key, audio, filename)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.rotateKey(ctx, idx)
	}
	return "", lastErr
}

func (c *Client) doTranscribe(ctx context.Context, key string, audio []byte, filename string) (text string, retryable bool, err error) {
	started := time.Now()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", false, fmt.Errorf("ai: build multipart: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", false, fmt.Errorf("ai: write audio part: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.AudioModel); err != nil {
		return "", false, fmt.Errorf("ai: write model field: %w", err)
	}
	if err := writer.WriteField("language", "ru"); err != nil {
		return "", false, fmt.Errorf("ai: write language field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", false, fmt.Errorf("ai: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", false, fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("ai: transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false, fmt.Errorf("ai: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("ai: transcription status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("ai: transcription status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("ai: decode transcription: %w", err)
	}

	logger.Debug(ctx, "ai", "transcription",
		slog.String("model", c.cfg.AudioModel),
		slog.Int("audio_bytes", len(audio)),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(started)).Milliseconds()),
	)
	return strings.TrimSpace(parsed.Text), true, nil
}
