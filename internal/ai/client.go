// Package ai talks to an OpenAI-compatible chat completions API and
// turns free-form user input into structured cooking content. All
// generation goes through a single Client that rotates between several
// API keys when the current one is rejected or throttled.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultTextModel  = "llama-3.3-70b-versatile"
	DefaultAudioModel = "whisper-large-v3-turbo"

	defaultRequestTimeout = 60 * time.Second
	maxCompletionTokens   = 2048
)

// Config describes the upstream API. APIKeys holds one or more keys;
// the client switches to the next key when the provider returns 401 or
// 429 and wraps around, so a single throttled key does not stall the bot.
type Config struct {
	BaseURL    string   `yaml:"base_url" envconfig:"AI_BASE_URL"`
	APIKeys    []string `yaml:"api_keys" envconfig:"AI_API_KEYS"`
	TextModel  string   `yaml:"text_model" envconfig:"AI_TEXT_MODEL"`
	AudioModel string   `yaml:"audio_model" envconfig:"AI_AUDIO_MODEL"`
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.TextModel == "" {
		out.TextModel = DefaultTextModel
	}
	if out.AudioModel == "" {
		out.AudioModel = DefaultAudioModel
	}
	return out
}

// Client is a thin chat-completions wrapper. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client

	mu     sync.Mutex
	keyIdx int
}

func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("ai: no API keys configured")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{cfg: cfg.withDefaults(), http: httpClient}, nil
}

func (c *Client) currentKey() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.APIKeys[c.keyIdx], c.keyIdx
}

// rotateKey advances past idx unless another goroutine already did.
func (c *Client) rotateKey(ctx context.Context, idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.keyIdx != idx {
		return
	}
	c.keyIdx = (c.keyIdx + 1) % len(c.cfg.APIKeys)
	logger.Warn(ctx, "ai", "key.rotated",
		slog.Int("from", idx),
		slog.Int("to", c.keyIdx),
	)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chat issues one completion request, trying every configured key once
// before giving up.
func (c *Client) chat(ctx context.Context, system, user string, temperature float64) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.TextModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < len(c.cfg.APIKeys); attempt++ {
		key, idx := c.currentKey()
		text, retryable, err := c.doChat(ctx, key, payload)
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

func (c *Client) doChat(ctx context.Context, key string, payload []byte) (text string, retryable bool, err error) {
	started := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("ai: completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false, fmt.Errorf("ai: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("ai: completion status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("ai: completion status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("ai: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("ai: upstream error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("ai: empty choices")
	}

	logger.Debug(ctx, "ai", "completion",
		slog.String("model", c.cfg.TextModel),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(started)).Milliseconds()),
	)
	return strings.TrimSpace(parsed.Choices[0].Message.Content), true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Intent is the coarse classification of a free-form user message.
type Intent string

const (
	IntentIngredients Intent = "ingredients"
	IntentRecipe      Intent = "recipe"
	IntentComparison  Intent = "comparison"
	IntentAdvice      Intent = "advice"
	IntentNutrition   Intent = "nutrition"
	IntentChat        Intent = "chat"
)

// ClassifyIntent decides what the user wants from a raw message.
// Unrecognized answers fall back to IntentChat.
func (c *Client) ClassifyIntent(ctx context.Context, text string) (Intent, error) {
	raw, err := c.chat(ctx, intentSystemPrompt, text, 0)
	if err != nil {
		return IntentChat, err
	}
	intent := parseIntent(raw)
	logger.Debug(ctx, "ai", "intent",
		slog.String("intent", string(intent)),
	)
	return intent, nil
}

// AnalyzeCategories picks the dish categories that fit the given
// products. The system prompt limits the answer to four keys.
func (c *Client) AnalyzeCategories(ctx context.Context, products string) ([]string, error) {
	raw, err := c.chat(ctx, categoriesSystemPrompt, products, 0.2)
	if err != nil {
		return nil, err
	}
	cats := parseCategories(raw)
	if len(cats) == 0 {
		return nil, fmt.Errorf("ai: no categories recognized in %q", truncate(raw, 120))
	}
	return cats, nil
}

// GenerateDishes proposes dish ideas for the products within one
// category. The model answers with a JSON array which is parsed into
// at most maxDishes entries.
func (c *Client) GenerateDishes(ctx context.Context, products, category string, maxDishes int) ([]models.Dish, error) {
	user := fmt.Sprintf("Продукты: %s\nКатегория: %s\nПредложи не более %d блюд.", products, category, maxDishes)
	raw, err := c.chat(ctx, dishesSystemPrompt, user, 0.7)
	if err != nil {
		return nil, err
	}
	dishes, err := ParseDishes(raw)
	if err != nil {
		return nil, err
	}
	if len(dishes) > maxDishes {
		dishes = dishes[:maxDishes]
	}
	return dishes, nil
}

// GenerateRecipe writes a full recipe for a dish constrained to the
// user's products.
func (c *Client) GenerateRecipe(ctx context.Context, dish, products string) (string, error) {
	user := fmt.Sprintf("Блюдо: %s\nДоступные продукты: %s", dish, products)
	return c.chat(ctx, recipeSystemPrompt, user, 0.6)
}

// GenerateFreestyleRecipe writes a recipe for a named dish without any
// product constraints, for users who ask for a dish directly.
func (c *Client) GenerateFreestyleRecipe(ctx context.Context, dish string) (string, error) {
	return c.chat(ctx, freestyleSystemPrompt, dish, 0.6)
}

// GenerateComparison answers "what is better, X or Y" style questions.
func (c *Client) GenerateComparison(ctx context.Context, question string) (string, error) {
	return c.chat(ctx, comparisonSystemPrompt, question, 0.5)
}

// GenerateCookingAdvice answers general cooking technique questions.
func (c *Client) GenerateCookingAdvice(ctx context.Context, question string) (string, error) {
	return c.chat(ctx, adviceSystemPrompt, question, 0.5)
}

// GenerateNutritionInfo answers calorie and nutrition questions.
func (c *Client) GenerateNutritionInfo(ctx context.Context, question string) (string, error) {
	return c.chat(ctx, nutritionSystemPrompt, question, 0.3)
}

// GenerateChatReply handles small talk that matched no cooking intent.
func (c *Client) GenerateChatReply(ctx context.Context, text string) (string, error) {
	return c.chat(ctx, chatSystemPrompt, text, 0.8)
}
