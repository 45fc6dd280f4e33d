package storage

import (
	"context"
	"time"

	"postcraft/internal/app/model"
)

// Paths are the files written for one saved post.
type Paths struct {
	JSON  string
	Text  string
	Image string
}

// Record is the indexed summary of a saved post.
type Record struct {
	ID        string
	Platform  model.Platform
	Niche     string
	Title     string
	Body      string
	Hashtags  []string
	CreatedAt time.Time
	Path      string
}

// Excerpt returns the first n runes of the body.
func (r Record) Excerpt(n int) string {
	body := []rune(r.Body)
	if len(body) <= n {
		return r.Body
	}
	return string(body[:n]) + "..."
}

// Mirror copies saved artifacts to a remote location.
type Mirror interface {
	Upload(ctx context.Context, localPaths ...string) error
}
