package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIngredientsCommaSeparated(t *testing.T) {
	assert.Equal(t, "картофель, лук, морковь", normalizeIngredients("Картофель,  лук , морковь"))
}

func TestNormalizeIngredientsSpaceSeparated(t *testing.T) {
	assert.Equal(t, "картофель, лук, морковь", normalizeIngredients("картофель лук морковь"))
}

func TestNormalizeIngredientsSingleWord(t *testing.T) {
	assert.Equal(t, "картофель", normalizeIngredients("Картофель"))
}

func TestNormalizeIngredientsDropsEmptyParts(t *testing.T) {
	assert.Equal(t, "лук, морковь", normalizeIngredients("лук,, морковь,"))
}

func TestNormalizeIngredientsEmpty(t *testing.T) {
	assert.Equal(t, "", normalizeIngredients("   "))
}

func TestExtractDishNameStripsFiller(t *testing.T) {
	assert.Equal(t, "Борщ", extractDishName("Как приготовить борщ?"))
	assert.Equal(t, "Борщ", extractDishName("дай мне рецепт борщ"))
	assert.Equal(t, "Паста карбонара", extractDishName("хочу паста карбонара пожалуйста"))
}

func TestExtractDishNamePlainDish(t *testing.T) {
	assert.Equal(t, "Омлет", extractDishName("омлет"))
}

func TestExtractDishNameAllFiller(t *testing.T) {
	// Nothing left after stripping, the raw text is the best guess.
	assert.Equal(t, "рецепт", extractDishName("рецепт"))
}

func TestCategoryLabelFallsBackToKey(t *testing.T) {
	assert.Equal(t, "🍲 Супы", categoryLabel("soup"))
	assert.Equal(t, "unknown", categoryLabel("unknown"))
}
