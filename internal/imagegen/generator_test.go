package imagegen

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/internal/llm/llmtest"
)

func TestRenderDisabled(t *testing.T) {
	client := &llmtest.ImageClient{Data: []byte("png")}
	g := NewGenerator(client, Options{})

	art, err := g.Render(context.Background(), "a latte", false)
	require.NoError(t, err)

	assert.True(t, art.IsPlaceholder())
	assert.NotEmpty(t, art.Data)
	assert.Equal(t, "image backend disabled", art.Reason)
	assert.Zero(t, client.Calls())
}

func TestRenderGenerated(t *testing.T) {
	client := &llmtest.ImageClient{Data: []byte("png-bytes")}
	g := NewGenerator(client, Options{})

	art, err := g.Render(context.Background(), "a latte", true)
	require.NoError(t, err)

	assert.Equal(t, model.SourceGenerated, art.Source)
	assert.Equal(t, []byte("png-bytes"), art.Data)
	assert.Empty(t, art.Reason)
}

func TestRenderBackendFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *llmtest.ImageClient
	}{
		{name: "error", client: &llmtest.ImageClient{Err: llm.NewBackendError("imagen", llm.Permanent, llmtest.ErrImageBackend)}},
		{name: "emptyData", client: &llmtest.ImageClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := NewGenerator(tt.client, Options{}).Render(context.Background(), "a latte", true)
			require.NoError(t, err)
			assert.True(t, art.IsPlaceholder())
			assert.NotEmpty(t, art.Reason)
			assert.NotEmpty(t, art.Data)
		})
	}
}

func TestRenderRequireGenerated(t *testing.T) {
	client := &llmtest.ImageClient{Err: llmtest.ErrImageBackend}
	g := NewGenerator(client, Options{RequireGenerated: true})

	_, err := g.Render(context.Background(), "a latte", true)
	assert.ErrorIs(t, err, llmtest.ErrImageBackend)
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(nil, Options{}).Render(ctx, "a latte", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaceholderDeterministic(t *testing.T) {
	a := PlaceholderPNG("a latte, watercolor style")
	b := PlaceholderPNG("a latte, watercolor style")
	c := PlaceholderPNG("a mountain at dawn")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	img, err := png.Decode(bytes.NewReader(a))
	require.NoError(t, err)
	assert.Equal(t, placeholderSize, img.Bounds().Dx())
	assert.Equal(t, placeholderSize, img.Bounds().Dy())
}
