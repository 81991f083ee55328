package models

import "time"

// Post is a blog post parsed from a markdown file with YAML front matter.
type Post struct {
	Title   string    `json:"title" yaml:"title"`
	Slug    string    `json:"slug" yaml:"slug"`
	Tags    []string  `json:"tags" yaml:"tags"`
	Created time.Time `json:"created" yaml:"created"`
	Updated time.Time `json:"updated" yaml:"updated"`
	// Content is the raw markdown body with front matter stripped.
	Content string `json:"content" yaml:"-"`
}
