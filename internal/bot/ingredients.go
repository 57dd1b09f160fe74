package bot

import (
	"strings"
	"unicode"
)

// normalizeIngredients canonicalizes a product message. Users either
// separate products with commas or just list words; a comma-less
// multi-word message is treated as one product per word.
func normalizeIngredients(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if !strings.Contains(text, ",") {
		words := strings.Fields(text)
		if len(words) > 1 {
			return strings.ToLower(strings.Join(words, ", "))
		}
		return strings.ToLower(text)
	}

	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.Join(strings.Fields(p), " "))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// requestFiller are lead-in words stripped from "дай рецепт борща"
// style requests before the dish name is extracted.
var requestFiller = []string{
	"рецепт", "рецепта", "приготовь", "приготовить", "как сделать",
	"как приготовить", "хочу", "дай", "мне", "пожалуйста", "скажи",
}

// extractDishName pulls the dish out of a recipe request and
// capitalizes it for display.
func extractDishName(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	lowered = strings.Trim(lowered, "?!.")

	for changed := true; changed; {
		changed = false
		for _, filler := range requestFiller {
			for _, pattern := range []string{filler + " ", " " + filler} {
				if strings.HasPrefix(lowered, pattern) {
					lowered = strings.TrimSpace(strings.TrimPrefix(lowered, pattern))
					changed = true
				}
				if strings.HasSuffix(lowered, pattern) {
					lowered = strings.TrimSpace(strings.TrimSuffix(lowered, pattern))
					changed = true
				}
			}
			if lowered == filler {
				lowered = ""
			}
		}
	}

	lowered = strings.TrimSpace(lowered)
	if lowered == "" {
		return strings.TrimSpace(text)
	}
	return capitalize(lowered)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
