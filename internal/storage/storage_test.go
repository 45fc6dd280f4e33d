package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"postcraft/internal/app/model"
)

func newResult(platform model.Platform, niche, title, body string, tags []string, at time.Time) *model.Result {
	hs := make([]model.Hashtag, len(tags))
	for i, t := range tags {
		hs[i] = model.Hashtag{Tag: t, Category: model.CategoryBroad}
	}
	return &model.Result{
		Request:   model.Request{Platform: platform, Niche: niche, Audience: "beginners", Tone: model.DefaultTone},
		Content:   model.Content{Topic: title, Body: body, CharCount: len(body), WithinLimit: true},
		Hashtags:  hs,
		Image:     model.ImageArtifact{Data: []byte("png"), Source: model.SourcePlaceholder, Reason: "image backend disabled"},
		CreatedAt: at,
	}
}

type recordingMirror struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (m *recordingMirror) Upload(ctx context.Context, localPaths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, localPaths...)
	return m.err
}

func TestPostStoreSave(t *testing.T) {
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	imagesDir := filepath.Join(dir, "images")
	s := NewPostStore(postsDir, imagesDir)

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	r := newResult(model.PlatformInstagram, "Coffee Lovers", "Brew Better", "Slow mornings.", []string{"coffee"}, at)

	paths, err := s.Save(context.Background(), r)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if r.ID == "" {
		t.Error("Save() did not assign an ID")
	}

	wantJSON := filepath.Join(postsDir, "instagram_coffee-lovers_250314_092653.json")
	if paths.JSON != wantJSON {
		t.Errorf("JSON path = %q, want %q", paths.JSON, wantJSON)
	}
	if paths.Text != strings.TrimSuffix(wantJSON, ".json")+".txt" {
		t.Errorf("Text path = %q", paths.Text)
	}
	if paths.Image != filepath.Join(imagesDir, "instagram_coffee-lovers_250314_092653.png") {
		t.Errorf("Image path = %q", paths.Image)
	}
	if r.Image.Path != paths.Image {
		t.Errorf("Image.Path = %q, want %q", r.Image.Path, paths.Image)
	}

	for _, p := range []string{paths.JSON, paths.Text, paths.Image} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected file %s: %v", p, err)
		}
	}

	text, err := os.ReadFile(paths.Text)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if !strings.Contains(string(text), "#coffee") || !strings.Contains(string(text), "Slow mornings.") {
		t.Errorf("text file missing content:\n%s", text)
	}
}

func TestPostStoreSaveSameSecond(t *testing.T) {
	s := NewPostStore(t.TempDir(), t.TempDir())
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	first, err := s.Save(context.Background(), newResult(model.PlatformTwitter, "tech", "A", "a", nil, at))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := s.Save(context.Background(), newResult(model.PlatformTwitter, "tech", "B", "b", nil, at))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if first.JSON == second.JSON {
		t.Errorf("both posts written to %s", first.JSON)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestPostStoreLoadRoundTrip(t *testing.T) {
	postsDir := t.TempDir()
	imagesDir := t.TempDir()
	s := NewPostStore(postsDir, imagesDir)

	r := newResult(model.PlatformLinkedIn, "leadership", "Lead with Questions", "Curiosity scales.", []string{"leadership", "management"}, time.Now().UTC())
	if _, err := s.Save(context.Background(), r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(postsDir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := NewPostStore(postsDir, imagesDir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rec, ok := reloaded.Get(r.ID)
	if !ok {
		t.Fatalf("post %s not indexed after Load()", r.ID)
	}
	if rec.Title != "Lead with Questions" || rec.Platform != model.PlatformLinkedIn {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Hashtags) != 2 || rec.Hashtags[0] != "#leadership" {
		t.Errorf("Hashtags = %v", rec.Hashtags)
	}
}

func TestPostStoreLoadMissingDir(t *testing.T) {
	s := NewPostStore(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	if err := s.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func seededStore(t *testing.T) *PostStore {
	t.Helper()
	s := NewPostStore(t.TempDir(), t.TempDir())
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	posts := []*model.Result{
		newResult(model.PlatformInstagram, "coffee", "Brew Better", "Grind fresh every morning.", []string{"coffee", "barista"}, base),
		newResult(model.PlatformTwitter, "coffee", "Cold Brew Myths", "Cold brew is not stronger.", []string{"coldbrew"}, base.Add(time.Hour)),
		newResult(model.PlatformInstagram, "fitness", "Morning Mobility", "Five minutes of stretching.", []string{"fitness", "mobility"}, base.Add(2*time.Hour)),
	}
	for _, p := range posts {
		if _, err := s.Save(context.Background(), p); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	return s
}

func titles(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestPostStoreListRecent(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		name     string
		platform model.Platform
		niche    string
		limit    int
		want     []string
	}{
		{name: "all", want: []string{"Morning Mobility", "Cold Brew Myths", "Brew Better"}},
		{name: "limit", limit: 2, want: []string{"Morning Mobility", "Cold Brew Myths"}},
		{name: "platform", platform: model.PlatformInstagram, want: []string{"Morning Mobility", "Brew Better"}},
		{name: "niche", niche: "COFFEE", want: []string{"Cold Brew Myths", "Brew Better"}},
		{name: "none", platform: model.PlatformFacebook, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(s.ListRecent(tt.platform, tt.niche, tt.limit))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("ListRecent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostStoreSearch(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title", query: "brew", want: []string{"Cold Brew Myths", "Brew Better"}},
		{name: "body", query: "stretching", want: []string{"Morning Mobility"}},
		{name: "hashtag", query: "#barista", want: []string{"Brew Better"}},
		{name: "noMatch", query: "sourdough", want: []string{}},
		{name: "blank", query: "  ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(s.Search(tt.query))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPostStoreMirror(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "mirrorFailureIsNotFatal", err: errors.New("bucket unreachable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMirror{err: tt.err}
			s := NewPostStore(t.TempDir(), t.TempDir()).WithMirror(m)

			paths, err := s.Save(context.Background(), newResult(model.PlatformFacebook, "travel", "T", "b", nil, time.Now()))
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			if len(m.paths) != 3 {
				t.Fatalf("mirror received %v, want 3 paths", m.paths)
			}
			if m.paths[0] != paths.JSON || m.paths[2] != paths.Image {
				t.Errorf("mirror paths = %v", m.paths)
			}
		})
	}
}

func TestRecordExcerpt(t *testing.T) {
	rec := Record{Body: "héllo world"}
	if got := rec.Excerpt(5); got != "héllo..." {
		t.Errorf("Excerpt(5) = %q", got)
	}
	if got := rec.Excerpt(50); got != "héllo world" {
		t.Errorf("Excerpt(50) = %q", got)
	}
}

func TestFormatTextStrategy(t *testing.T) {
	r := newResult(model.PlatformLinkedIn, "leadership", "Lead Quietly", "Listen first.", []string{"leadership"}, time.Now())

	if got := FormatText(r); strings.Contains(got, "Strategy:") || strings.Contains(got, "Alternatives:") {
		t.Errorf("FormatText() without strategy printed strategy lines:\n%s", got)
	}

	r.Strategy = model.HashtagStrategy{
		Alternatives:    []string{"management", "careers"},
		Strategy:        "Pair one broad tag with two niche ones.",
		ReachPrediction: "high",
	}
	got := FormatText(r)
	for _, want := range []string{
		"Alternatives: #management #careers",
		"Strategy: Pair one broad tag with two niche ones.",
		"Expected reach: high",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatText() missing %q:\n%s", want, got)
		}
	}
}
