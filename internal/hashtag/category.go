package hashtag

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"postcraft/internal/app/model"
)

var trending = map[string]bool{
	"trending":      true,
	"viral":         true,
	"fyp":           true,
	"foryou":        true,
	"explore":       true,
	"instagood":     true,
	"photooftheday": true,
	"reels":         true,
	"tbt":           true,
	"motivation":    true,
	"inspiration":   true,
	"love":          true,
}

const broadMaxLen = 10

// Categorize labels a tag trending, broad (short single word) or niche
// (long or compound).
func Categorize(tag string) model.Category {
	if tag == "" {
		return model.CategoryUncategorized
	}
	if trending[strings.ToLower(tag)] {
		return model.CategoryTrending
	}
	if utf8.RuneCountInString(tag) > broadMaxLen || compound(tag) {
		return model.CategoryNiche
	}
	return model.CategoryBroad
}

// compound reports CamelCase, snake_case or digit-bearing tags.
func compound(tag string) bool {
	upper := 0
	for i, c := range tag {
		switch {
		case c == '_' || unicode.IsDigit(c):
			return true
		case unicode.IsUpper(c) && i > 0:
			upper++
		}
	}
	return upper > 0
}
