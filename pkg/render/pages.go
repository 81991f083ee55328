package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"blogchat/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the blog's HTML surface. Templates are parsed once at
// construction; output is minified before it leaves the process.
type Pages struct {
	tmpl *template.Template
}

func NewPages() (*Pages, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"datefmt": func(t time.Time) string { return t.Format("January 2, 2006") },
	})
	tmpl, err := tmpl.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

type indexData struct {
	Title string
	Error string
	Posts []*models.Post
}

type postData struct {
	Post     *models.Post
	Body     template.HTML
	Room     string
	Username string
}

// Index renders the post listing page.
func (p *Pages) Index(title string, posts []*models.Post) ([]byte, error) {
	return p.renderIndex(indexData{Title: title, Posts: posts})
}

// NotFound renders the post listing with an error banner; served with
// a 404 status for unknown slugs.
func (p *Pages) NotFound(title string, posts []*models.Post) ([]byte, error) {
	return p.renderIndex(indexData{Title: title, Error: "Post not found", Posts: posts})
}

func (p *Pages) renderIndex(data indexData) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return MinifyHTML(buf.Bytes()), nil
}

// Post renders a single post page with its chat room attached. room is
// the chat room the page's widget joins; username is the viewer's
// resolved display name.
func (p *Pages) Post(post *models.Post, room, username string) ([]byte, error) {
	body, err := Markdown(post.Content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	data := postData{Post: post, Body: template.HTML(body), Room: room, Username: username}
	if err := p.tmpl.ExecuteTemplate(&buf, "post.html", data); err != nil {
		return nil, fmt.Errorf("render post: %w", err)
	}
	return MinifyHTML(buf.Bytes()), nil
}
