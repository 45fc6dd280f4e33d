package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"postcraft/internal/app/model"
)

const timestampLayout = "060102_150405"

// PostStore writes posts under postsDir and imagesDir and keeps an
// in-memory index of everything found there.
type PostStore struct {
	postsDir  string
	imagesDir string
	mirror    Mirror
	now       func() time.Time

	mu    sync.RWMutex
	index map[string]Record
}

func NewPostStore(postsDir, imagesDir string) *PostStore {
	return &PostStore{
		postsDir:  postsDir,
		imagesDir: imagesDir,
		now:       time.Now,
		index:     make(map[string]Record),
	}
}

// WithMirror uploads every saved artifact through m.
func (s *PostStore) WithMirror(m Mirror) *PostStore {
	s.mirror = m
	return s
}

func (s *PostStore) EnsureDirectories() error {
	if err := os.MkdirAll(s.postsDir, 0755); err != nil {
		return fmt.Errorf("failed to create posts directory: %w", err)
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	return nil
}

// Load indexes every post JSON in the posts directory. Unreadable files
// are skipped. A missing directory is an empty store.
func (s *PostStore) Load() error {
	entries, err := os.ReadDir(s.postsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read posts directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.postsDir, entry.Name())
		rec, err := readRecord(path)
		if err != nil {
			slog.Warn("Skipping unreadable post", "path", path, "error", err)
			continue
		}
		s.put(rec)
		loaded++
	}

	slog.Debug("Post index loaded", "dir", s.postsDir, "posts", loaded)
	return nil
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Record{}, err
	}
	if result.ID == "" {
		return Record{}, errors.New("missing post_id")
	}

	rec := recordOf(&result)
	rec.Path = path
	return rec, nil
}

func recordOf(r *model.Result) Record {
	return Record{
		ID:        r.ID,
		Platform:  r.Request.Platform,
		Niche:     r.Request.Niche,
		Title:     r.Content.Topic,
		Body:      r.Content.Body,
		Hashtags:  r.Tags(),
		CreatedAt: r.CreatedAt,
	}
}

// Save writes the JSON, readable text and image for r and indexes it.
// Missing ID and CreatedAt are filled in, and Image.Path is set when an
// image is written.
func (s *PostStore) Save(ctx context.Context, r *model.Result) (Paths, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	if err := s.EnsureDirectories(); err != nil {
		return Paths{}, err
	}

	base := s.baseName(r)
	paths := Paths{
		JSON: filepath.Join(s.postsDir, base+".json"),
		Text: filepath.Join(s.postsDir, base+".txt"),
	}

	if len(r.Image.Data) > 0 {
		paths.Image = filepath.Join(s.imagesDir, base+".png")
		if err := os.WriteFile(paths.Image, r.Image.Data, 0644); err != nil {
			return Paths{}, fmt.Errorf("failed to write image: %w", err)
		}
		r.Image.Path = paths.Image
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("failed to encode post: %w", err)
	}
	if err := os.WriteFile(paths.JSON, data, 0644); err != nil {
		return Paths{}, fmt.Errorf("failed to write post: %w", err)
	}

	if err := os.WriteFile(paths.Text, []byte(FormatText(r)), 0644); err != nil {
		return Paths{}, fmt.Errorf("failed to write post text: %w", err)
	}

	rec := recordOf(r)
	rec.Path = paths.JSON
	s.put(rec)

	if s.mirror != nil {
		uploads := []string{paths.JSON, paths.Text}
		if paths.Image != "" {
			uploads = append(uploads, paths.Image)
		}
		if err := s.mirror.Upload(ctx, uploads...); err != nil {
			slog.Warn("Failed to mirror post", "id", r.ID, "error", err)
		}
	}

	slog.Info("Post saved", "id", r.ID, "path", paths.JSON)
	return paths, nil
}

func (s *PostStore) baseName(r *model.Result) string {
	base := fmt.Sprintf("%s_%s_%s", slug(string(r.Request.Platform)), slug(r.Request.Niche), r.CreatedAt.Format(timestampLayout))
	if _, err := os.Stat(filepath.Join(s.postsDir, base+".json")); err == nil {
		base += "_" + shortID(r.ID)
	}
	return base
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func slug(s string) string {
	s = strings.Map(func(c rune) rune {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c):
			return unicode.ToLower(c)
		case unicode.IsSpace(c) || c == '-' || c == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(s))
	if s == "" {
		return "general"
	}
	return s
}

func (s *PostStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[rec.ID] = rec
}

func (s *PostStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.index[id]
	return rec, ok
}

func (s *PostStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// ListRecent returns posts newest first, filtered by platform and niche
// when they are non-empty. A limit of zero or less returns everything.
func (s *PostStore) ListRecent(platform model.Platform, niche string, limit int) []Record {
	return s.filter(limit, func(rec Record) bool {
		if platform != "" && !strings.EqualFold(string(rec.Platform), string(platform)) {
			return false
		}
		return niche == "" || strings.EqualFold(rec.Niche, niche)
	})
}

// Search matches query case-insensitively against title, body and hashtags.
func (s *PostStore) Search(query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return s.filter(0, func(rec Record) bool {
		if strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.Body), q) {
			return true
		}
		for _, tag := range rec.Hashtags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

func (s *PostStore) filter(limit int, keep func(Record) bool) []Record {
	s.mu.RLock()
	var out []Record
	for _, rec := range s.index {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
