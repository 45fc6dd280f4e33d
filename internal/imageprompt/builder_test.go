package imageprompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/internal/llm/llmtest"
	"postcraft/pkg/prompts"
)

const analysisJSON = `{"subject": "a steaming cup of pour-over coffee", "mood": "calm", "setting": "a sunlit kitchen counter", "style": "warm film photography"}`

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: analysisJSON},
		{name: "fenced", raw: "```json\n" + analysisJSON + "\n```"},
		{name: "fencedNoLanguage", raw: "```\n" + analysisJSON + "\n```"},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "notJSON", raw: "A cup of coffee in a kitchen", wantErr: true},
		{name: "array", raw: `[` + analysisJSON + `]`, wantErr: true},
		{name: "missingField", raw: `{"subject": "cup", "mood": "calm", "setting": "kitchen"}`, wantErr: true},
		{name: "blankField", raw: `{"subject": "cup", "mood": " ", "setting": "kitchen", "style": "film"}`, wantErr: true},
		{name: "extraField", raw: `{"subject": "cup", "mood": "calm", "setting": "kitchen", "style": "film", "colors": "brown"}`, wantErr: true},
		{name: "trailingData", raw: analysisJSON + ` {"subject": "again"}`, wantErr: true},
		{name: "proseAround", raw: "Here you go: " + analysisJSON, wantErr: true},
		{name: "null", raw: "null", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysis(tt.raw)
			if tt.wantErr {
				var parseErr *AnalysisParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, Analysis{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "calm", got.Mood)
		})
	}
}

func TestCompileOrderAndDeterminism(t *testing.T) {
	a := Analysis{Subject: "a latte", Mood: "cozy", Setting: "a rainy cafe.", Style: "watercolor"}

	first := Compile(a)
	second := Compile(a)

	assert.Equal(t, first, second)
	assert.Equal(t, model.ImagePrompt("a latte, watercolor style, set in a rainy cafe, with a cozy mood"), first)
}

func TestBuild(t *testing.T) {
	client := llmtest.NewTextClient(analysisJSON)
	b := NewBuilder(client, prompts.Default())

	got, err := b.Build(context.Background(), model.Content{Topic: "Brew Better", Body: "Slow mornings."})
	require.NoError(t, err)

	assert.Equal(t, model.ImagePrompt("a steaming cup of pour-over coffee, warm film photography style, set in a sunlit kitchen counter, with a calm mood"), got)
	assert.Contains(t, client.LastPrompt(), "Slow mornings.")
}

func TestAnalyzeBackendError(t *testing.T) {
	backendErr := llm.NewBackendError("stub", llm.Permanent, errors.New("quota"))
	client := llmtest.NewTextClient("", llmtest.Rule{Match: "visual director", Err: backendErr})
	b := NewBuilder(client, prompts.Default())

	_, err := b.Analyze(context.Background(), model.Content{Topic: "t", Body: "b"})
	assert.ErrorIs(t, err, backendErr)

	var parseErr *AnalysisParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestAnalyzeMalformedReply(t *testing.T) {
	client := llmtest.NewTextClient(`{"subject": "cup"}`)
	b := NewBuilder(client, prompts.Default())

	_, err := b.Analyze(context.Background(), model.Content{Topic: "t", Body: "b"})

	var parseErr *AnalysisParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Error(), "mood")
}
