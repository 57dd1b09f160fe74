package images

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	data  []byte
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, dish, description string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubProvider{name: "first", data: []byte("image-a")}
	second := &stubProvider{name: "second", data: []byte("image-b")}
	chain := NewChain(first, second)

	data, err := chain.Generate(context.Background(), "Борщ", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-a"), data)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughToNextProvider(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("overloaded")}
	second := &stubProvider{name: "second", data: []byte("image-b")}
	chain := NewChain(first, second)

	data, err := chain.Generate(context.Background(), "Борщ", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-b"), data)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainAggregatesAllFailures(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("overloaded")}
	second := &stubProvider{name: "second", err: errors.New("quota exceeded")}
	chain := NewChain(first, second)

	_, err := chain.Generate(context.Background(), "Борщ", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("overloaded")}
	second := &stubProvider{name: "second", data: []byte("image-b")}
	chain := NewChain(first, second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Generate(ctx, "Борщ", "")
	require.Error(t, err)
	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainEmpty(t *testing.T) {
	_, err := NewChain().Generate(context.Background(), "Борщ", "")
	assert.Error(t, err)
}

func TestBuildPromptTruncates(t *testing.T) {
	long := make([]rune, 0, 500)
	for i := 0; i < 500; i++ {
		long = append(long, 'ы')
	}
	prompt := buildPrompt(string(long), "")
	assert.LessOrEqual(t, len([]rune(prompt)), 400)
	assert.Contains(t, prompt, "food photography")
}

func TestPromptSeedIsStable(t *testing.T) {
	a := promptSeed("professional food photography, Борщ")
	b := promptSeed("professional food photography, Борщ")
	assert.Equal(t, a, b)
	assert.Less(t, a, uint32(1000000))
}
