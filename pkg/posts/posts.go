package posts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"blogchat/pkg/logger"
	"blogchat/pkg/models"
)

// ErrNotFound is returned by Get for unknown slugs.
var ErrNotFound = errors.New("post not found")

var frontMatterDelim = []byte("---")

// Library loads markdown posts from a content directory. The set is
// read at startup and on Reload; request paths only read the cached
// index.
type Library struct {
	dir string

	mu     sync.RWMutex
	bySlug map[string]*models.Post
	sorted []*models.Post
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir, bySlug: make(map[string]*models.Post)}
}

// Load scans the content directory. Files that fail to parse are
// skipped with a log line rather than failing the whole scan.
func (l *Library) Load() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read content dir: %w", err)
	}
	bySlug := make(map[string]*models.Post)
	var sorted []*models.Post
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		p, err := parseFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			logger.Warn("post_parse_failed", "file", e.Name(), "error", err.Error())
			continue
		}
		if p.Slug == "" {
			p.Slug = strings.TrimSuffix(e.Name(), ".md")
		}
		bySlug[p.Slug] = p
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Created.After(sorted[j].Created)
	})
	l.mu.Lock()
	l.bySlug = bySlug
	l.sorted = sorted
	l.mu.Unlock()
	logger.Info("posts_loaded", "dir", l.dir, "count", len(sorted))
	return nil
}

// List returns all posts, newest first.
func (l *Library) List() []*models.Post {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.Post, len(l.sorted))
	copy(out, l.sorted)
	return out
}

// Get returns the post for a slug.
func (l *Library) Get(slug string) (*models.Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// parseFile splits a markdown file into YAML front matter and body.
// Front matter is optional; a file without it is all body.
func parseFile(path string) (*models.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes one markdown document with optional front matter.
func Parse(raw []byte) (*models.Post, error) {
	var p models.Post
	body := raw
	if bytes.HasPrefix(raw, frontMatterDelim) {
		rest := raw[len(frontMatterDelim):]
		// Delimiter must be its own line.
		rest = bytes.TrimPrefix(rest, []byte("\r"))
		if len(rest) > 0 && rest[0] == '\n' {
			rest = rest[1:]
			end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
			if end < 0 {
				return nil, errors.New("unterminated front matter")
			}
			if err := yaml.Unmarshal(rest[:end], &p); err != nil {
				return nil, fmt.Errorf("front matter: %w", err)
			}
			body = rest[end+1+len(frontMatterDelim):]
			body = bytes.TrimPrefix(body, []byte("\r"))
			body = bytes.TrimPrefix(body, []byte("\n"))
		}
	}
	p.Content = string(body)
	if p.Title == "" {
		p.Title = firstHeading(p.Content)
	}
	return &p, nil
}

// firstHeading pulls a fallback title from the first markdown H1.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return "Untitled"
}
