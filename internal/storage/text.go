package storage

import (
	"fmt"
	"strings"
	"time"

	"postcraft/internal/app/model"
)

// FormatText renders a post as the human-readable .txt companion file.
func FormatText(r *model.Result) string {
	rule := strings.Repeat("=", 60)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSOCIAL MEDIA POST\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Post ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Generated: %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Platform: %s\n", r.Request.Platform.Title())
	fmt.Fprintf(&b, "Niche: %s\n", r.Request.Niche)
	fmt.Fprintf(&b, "Audience: %s\n\n", r.Request.Audience)

	fmt.Fprintf(&b, "Title: %s\n", r.Content.Topic)
	if r.Content.Hook != "" {
		fmt.Fprintf(&b, "Hook: %s\n", r.Content.Hook)
	}
	fmt.Fprintf(&b, "\nContent:\n%s\n\n", r.Content.Body)
	fmt.Fprintf(&b, "Characters: %d (within limit: %t)\n\n", r.Content.CharCount, r.Content.WithinLimit)

	fmt.Fprintf(&b, "Hashtags:\n%s\n", strings.Join(r.Tags(), " "))
	if alts := r.Strategy.Alternatives; len(alts) > 0 {
		fmt.Fprintf(&b, "Alternatives: #%s\n", strings.Join(alts, " #"))
	}
	if r.Strategy.Strategy != "" {
		fmt.Fprintf(&b, "Strategy: %s\n", r.Strategy.Strategy)
	}
	if r.Strategy.ReachPrediction != "" {
		fmt.Fprintf(&b, "Expected reach: %s\n", r.Strategy.ReachPrediction)
	}

	if r.ImagePrompt != "" {
		fmt.Fprintf(&b, "\nImage prompt:\n%s\n", r.ImagePrompt)
	}
	fmt.Fprintf(&b, "Image: %s", r.Image.Source)
	if r.Image.Path != "" {
		fmt.Fprintf(&b, " (%s)", r.Image.Path)
	}
	if r.Image.Reason != "" {
		fmt.Fprintf(&b, " - %s", r.Image.Reason)
	}
	b.WriteString("\n")

	return b.String()
}
