package chat

import (
	"fmt"
	"strings"

	"postcraft/internal/app/model"
)

// FormatResult renders a generated post for the terminal.
func FormatResult(r *model.Result) string {
	rule := strings.Repeat("-", 40)

	var b strings.Builder
	fmt.Fprintf(&b, "Post generated for %s (%s, %s)\n\n", r.Request.Platform.Title(), r.Request.Niche, r.Request.Audience)
	fmt.Fprintf(&b, "Title: %s\n\n", r.Content.Topic)
	fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, r.Content.Body, rule)
	if !r.Content.WithinLimit {
		fmt.Fprintf(&b, "Warning: %d characters, over the %d limit\n", r.Content.CharCount, r.Request.Platform.CharLimit())
	}

	if tags := r.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "\nHashtags:\n%s\n", strings.Join(tags, " "))
	}
	if r.Strategy.Strategy != "" {
		fmt.Fprintf(&b, "Strategy: %s\n", r.Strategy.Strategy)
	}

	image := string(r.Image.Source)
	if r.Image.Path != "" {
		image += ": " + r.Image.Path
	}
	if r.Image.Reason != "" {
		image += " (" + r.Image.Reason + ")"
	}
	fmt.Fprintf(&b, "\nImage %s", image)
	return b.String()
}
