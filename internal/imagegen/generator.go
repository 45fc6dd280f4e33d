package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
)

const placeholderSize = 512

var ErrEmptyImage = errors.New("image backend returned no data")

type Options struct {
	// RequireGenerated turns backend failures into errors instead of placeholders.
	RequireGenerated bool
}

type Generator struct {
	client llm.ImageClient
	opts   Options
}

// NewGenerator accepts a nil client, in which case every render is a placeholder.
func NewGenerator(client llm.ImageClient, opts Options) *Generator {
	return &Generator{client: client, opts: opts}
}

// Render returns a generated image when the backend is enabled and answers,
// otherwise a placeholder carrying the reason. It only returns an error when
// RequireGenerated is set or the context is done.
func (g *Generator) Render(ctx context.Context, prompt model.ImagePrompt, enabled bool) (model.ImageArtifact, error) {
	if err := ctx.Err(); err != nil {
		return model.ImageArtifact{}, err
	}

	if !enabled || g.client == nil {
		return Placeholder(prompt, "image backend disabled"), nil
	}

	data, err := g.client.Generate(ctx, string(prompt))
	if err == nil && len(data) == 0 {
		err = ErrEmptyImage
	}
	if err != nil {
		if ctx.Err() != nil {
			return model.ImageArtifact{}, ctx.Err()
		}
		if g.opts.RequireGenerated {
			return model.ImageArtifact{}, fmt.Errorf("generate image: %w", err)
		}
		slog.Warn("Image generation failed, using placeholder", "error", err)
		return Placeholder(prompt, err.Error()), nil
	}

	slog.Debug("Image generated", "bytes", len(data))
	return model.ImageArtifact{Data: data, Source: model.SourceGenerated}, nil
}

// Placeholder builds a deterministic PNG for prompt.
func Placeholder(prompt model.ImagePrompt, reason string) model.ImageArtifact {
	return model.ImageArtifact{
		Data:   PlaceholderPNG(string(prompt)),
		Source: model.SourcePlaceholder,
		Reason: reason,
	}
}

// PlaceholderPNG draws a two-color diagonal gradient with a centered band.
// Colors and band position come from the FNV-1a hash of seed.
func PlaceholderPNG(seed string) []byte {
	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()

	from := color.RGBA{R: byte(sum), G: byte(sum >> 8), B: byte(sum >> 16), A: 0xff}
	to := color.RGBA{R: byte(sum >> 24), G: byte(sum >> 32), B: byte(sum >> 40), A: 0xff}
	band := placeholderSize/4 + int(sum>>48)%(placeholderSize/2)

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			t := (x + y) * 255 / (2 * (placeholderSize - 1))
			c := mix(from, to, t)
			if y >= band-8 && y < band+8 {
				c = color.RGBA{R: 0xff - c.R, G: 0xff - c.G, B: 0xff - c.B, A: 0xff}
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image only fails on writer errors.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func mix(a, b color.RGBA, t int) color.RGBA {
	lerp := func(x, y byte) byte {
		return byte((int(x)*(255-t) + int(y)*t) / 255)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}
