package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"blogchat/pkg/auth"
	"blogchat/pkg/logger"
	"blogchat/pkg/posts"
	"blogchat/pkg/render"
	"blogchat/pkg/utils"
)

// Pages serves the blog's HTML: the index and per-post pages with the
// chat widget attached.
type Pages struct {
	Library   *posts.Library
	Renderer  *render.Pages
	Resolver  *auth.Resolver
	SiteTitle string
}

// RegisterPages mounts the HTML routes. Must be registered last on the
// router because the slug route swallows the whole root namespace.
func RegisterPages(r *mux.Router, p *Pages) {
	r.HandleFunc("/", p.index).Methods(http.MethodGet)
	r.HandleFunc("/{slug}", p.post).Methods(http.MethodGet)
}

func (p *Pages) index(w http.ResponseWriter, r *http.Request) {
	out, err := p.Renderer.Index(p.SiteTitle, p.Library.List())
	if err != nil {
		logger.Error("index_render_failed", "error", err.Error())
		utils.JSONError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out)
}

// notFound serves the post listing with an error banner, mirroring the
// index so a bad link still leads somewhere useful.
func (p *Pages) notFound(w http.ResponseWriter) {
	out, err := p.Renderer.NotFound(p.SiteTitle, p.Library.List())
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(out)
}

// post renders one post with its chat room. The room slug is the post
// slug, so each post carries its own conversation.
func (p *Pages) post(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	post, err := p.Library.Get(slug)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			p.notFound(w)
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	username := p.Resolver.Resolve(auth.TokenFromRequest(r))
	out, err := p.Renderer.Post(post, slug, username)
	if err != nil {
		logger.Error("post_render_failed", "slug", slug, "error", err.Error())
		utils.JSONError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out)
}
