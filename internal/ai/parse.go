package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foodwizard/bot/internal/models"
)

// knownCategories is the fixed set of category keys the bot renders
// keyboards for. Anything else the model invents is dropped.
var knownCategories = map[string]struct{}{
	"breakfast": {},
	"soup":      {},
	"main":      {},
	"salad":     {},
	"snack":     {},
	"dessert":   {},
	"drink":     {},
	"mix":       {},
	"sauce":     {},
}

func parseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentIngredients:
		return IntentIngredients
	case IntentRecipe:
		return IntentRecipe
	case IntentComparison:
		return IntentComparison
	case IntentAdvice:
		return IntentAdvice
	case IntentNutrition:
		return IntentNutrition
	default:
		return IntentChat
	}
}

// parseCategories extracts valid category keys from a comma-separated
// model answer, preserving order and dropping duplicates.
func parseCategories(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if _, ok := knownCategories[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// ParseDishes decodes the model's dish list. Models wrap JSON in prose
// or code fences often enough that the array is cut out by bracket
// positions before decoding.
func ParseDishes(raw string) ([]models.Dish, error) {
	jsonPart := extractJSONArray(raw)
	if jsonPart == "" {
		return nil, fmt.Errorf("ai: no JSON array in answer %q", truncate(raw, 120))
	}

	var dishes []models.Dish
	if err := json.Unmarshal([]byte(jsonPart), &dishes); err != nil {
		return nil, fmt.Errorf("ai: decode dishes: %w", err)
	}

	out := dishes[:0]
	for _, d := range dishes {
		d.Name = strings.TrimSpace(d.Name)
		d.Description = strings.TrimSpace(d.Description)
		if d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ai: dish list empty after filtering")
	}
	return out, nil
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
