package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderDeterministic(t *testing.T) {
	e := NewEmbedder(8)
	ctx := context.Background()

	a, err := e.EmbedText(ctx, "same input")
	require.NoError(t, err)
	b, err := e.EmbedText(ctx, "same input")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)

	c, err := e.EmbedText(ctx, "different input")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestEmbedderConcurrentUse(t *testing.T) {
	e := NewEmbedder(8)
	ctx := context.Background()

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.EmbedTexts(ctx, []string{"alpha", "beta"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, goroutines, e.Calls())
}

func TestCompleterConcurrentUse(t *testing.T) {
	c := NewCompleter()
	ctx := context.Background()

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ans, err := c.Complete(ctx, "question")
			assert.NoError(t, err)
			assert.Equal(t, "mock answer", ans)
		}()
	}
	wg.Wait()
	assert.Equal(t, goroutines, c.Calls())
}
