package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDishesPlainArray(t *testing.T) {
	raw := `[{"name": "Борщ", "description": "Классический суп со свёклой."},
	 {"name": "Драники", "description": "Картофельные оладьи."}]`

	dishes, err := ParseDishes(raw)
	require.NoError(t, err)
	require.Len(t, dishes, 2)
	assert.Equal(t, "Борщ", dishes[0].Name)
	assert.Equal(t, "Картофельные оладьи.", dishes[1].Description)
}

func TestParseDishesWithCodeFence(t *testing.T) {
	raw := "Вот варианты:\n```json\n[{\"name\": \"Омлет\", \"description\": \"Быстрый завтрак.\"}]\n```\nПриятного аппетита!"

	dishes, err := ParseDishes(raw)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Омлет", dishes[0].Name)
}

func TestParseDishesDropsNameless(t *testing.T) {
	raw := `[{"name": "", "description": "пусто"}, {"name": "Салат", "description": ""}]`

	dishes, err := ParseDishes(raw)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Салат", dishes[0].Name)
}

func TestParseDishesNoArray(t *testing.T) {
	_, err := ParseDishes("не могу предложить блюда")
	assert.Error(t, err)
}

func TestParseCategories(t *testing.T) {
	cats := parseCategories("Soup, main, фантазия, soup, dessert")
	assert.Equal(t, []string{"soup", "main", "dessert"}, cats)
}

func TestParseIntentFallsBackToChat(t *testing.T) {
	assert.Equal(t, IntentRecipe, parseIntent("  Recipe\n"))
	assert.Equal(t, IntentChat, parseIntent("что-то странное"))
}

func TestChatRotatesKeysOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") == "Bearer bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ок"}}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIKeys: []string{"bad", "good"}}, srv.Client())
	require.NoError(t, err)

	text, err := client.chat(context.Background(), "system", "user", 0)
	require.NoError(t, err)
	assert.Equal(t, "ок", text)
	assert.Equal(t, int32(2), calls.Load())

	// The good key stays current for the next call.
	text, err = client.chat(context.Background(), "system", "user", 0)
	require.NoError(t, err)
	assert.Equal(t, "ок", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChatGivesUpAfterAllKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIKeys: []string{"a", "b"}}, srv.Client())
	require.NoError(t, err)

	_, err = client.chat(context.Background(), "system", "user", 0)
	assert.Error(t, err)
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
