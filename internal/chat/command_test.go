package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcraft/internal/app/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "generate",
			line: "generate post instagram fitness young_adults",
			want: GenerateCommand{Request: model.Request{Platform: model.PlatformInstagram, Niche: "fitness", Audience: "young_adults", Tone: model.DefaultTone}},
		},
		{
			name: "generateCaseInsensitiveMultiWordAudience",
			line: "GENERATE Post LinkedIn leadership first time managers",
			want: GenerateCommand{Request: model.Request{Platform: model.PlatformLinkedIn, Niche: "leadership", Audience: "first time managers", Tone: model.DefaultTone}},
		},
		{name: "suggestRecent", line: "suggest posts", want: SuggestCommand{}},
		{name: "suggestPlatform", line: "suggest posts Twitter", want: SuggestCommand{Platform: model.PlatformTwitter}},
		{name: "suggestNiche", line: "suggest posts fitness", want: SuggestCommand{Niche: "fitness"}},
		{name: "suggestMultiWordNiche", line: "suggest posts home coffee", want: SuggestCommand{Niche: "home coffee"}},
		{name: "search", line: "search posts cold brew", want: SearchCommand{Query: "cold brew"}},
		{name: "chat", line: "chat  how often should I post?", want: ChatCommand{Text: "how often should I post?"}},
		{name: "clear", line: "clear", want: ClearCommand{}},
		{name: "help", line: " HELP ", want: HelpCommand{}},
		{name: "exit", line: "exit", want: ExitCommand{}},
		{name: "quit", line: "Quit", want: ExitCommand{}},
		{name: "freeText", line: "What makes a good hook?", want: ChatCommand{Text: "What makes a good hook?"}},
		{name: "generateWithoutPostKeyword", line: "generate ideas for me", want: ChatCommand{Text: "generate ideas for me"}},
		{name: "clearWithArgsIsChat", line: "clear my schedule", want: ChatCommand{Text: "clear my schedule"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUsageErrors(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantCommand string
		wantMissing []string
		wantInvalid string
	}{
		{name: "generateOnlyPlatform", line: "generate post instagram", wantCommand: "generate", wantMissing: []string{"niche", "audience"}},
		{name: "generateNoArgs", line: "generate post", wantCommand: "generate", wantMissing: []string{"platform", "niche", "audience"}},
		{name: "generateMissingAudience", line: "generate post twitter tech", wantCommand: "generate", wantMissing: []string{"audience"}},
		{name: "generateUnknownPlatform", line: "generate post myspace music teens", wantCommand: "generate", wantInvalid: "platform"},
		{name: "generateUnknownPlatformAndMissing", line: "generate post myspace", wantCommand: "generate", wantMissing: []string{"niche", "audience"}, wantInvalid: "platform"},
		{name: "searchNoQuery", line: "search posts", wantCommand: "search", wantMissing: []string{"query"}},
		{name: "bareChat", line: "chat", wantCommand: "chat", wantMissing: []string{"message"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			assert.Nil(t, cmd)

			var usageErr *UsageError
			require.ErrorAs(t, err, &usageErr)
			assert.Equal(t, tt.wantCommand, usageErr.Command)
			assert.Equal(t, tt.wantMissing, usageErr.Missing)
			assert.Equal(t, tt.wantInvalid, usageErr.Invalid)
			for _, field := range tt.wantMissing {
				assert.Contains(t, usageErr.Error(), field)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
