package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/patch"
	"pressroom/internal/service"
	"pressroom/internal/session"
	"pressroom/internal/upload"
	"pressroom/internal/validation"
)

// ArticleHandler serves the news pages and the article lifecycle.
type ArticleHandler struct {
	base
	articles service.ArticleService
	pipeline *validation.Pipeline
	uploads  *upload.Saver
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(articles service.ArticleService, pipeline *validation.Pipeline, uploads *upload.Saver, flash session.Flash) *ArticleHandler {
	return &ArticleHandler{
		base:     base{flash: flash},
		articles: articles,
		pipeline: pipeline,
		uploads:  uploads,
	}
}

var articleRules = []validation.Rule{
	{Field: "title", Check: validation.Required, Message: "A title is required!"},
	{Field: "body", Check: validation.Required, Message: "The article body is required!"},
}

// List renders the news collection.
func (h *ArticleHandler) List(c echo.Context) error {
	articles, err := h.articles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return h.render(c, "news.html", echo.Map{
		"Title":    "News",
		"Articles": articles,
	})
}

// Show renders one article. A missing article surfaces as a 404 page,
// never as an authorization failure.
func (h *ArticleHandler) Show(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errs.ErrNotFound
	}
	article, err := h.articles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.render(c, "article.html", echo.Map{
		"Title":   article.Title,
		"Article": article,
	})
}

// New renders the empty article form.
func (h *ArticleHandler) New(c echo.Context) error {
	return h.render(c, "article_form.html", echo.Map{
		"Title":  "New Article",
		"Action": "/news",
		"Form":   map[string]string{},
	})
}

// Create validates the submission and stores a new article owned by the
// authenticated identity.
func (h *ArticleHandler) Create(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	fields := map[string]string{
		"title": strings.TrimSpace(c.FormValue("title")),
		"body":  strings.TrimSpace(c.FormValue("body")),
	}

	if result := h.pipeline.Run(fields, articleRules); !result.OK() {
		return h.render(c, "article_form.html", echo.Map{
			"Title":  "New Article",
			"Action": "/news",
			"Errors": result,
			"Form":   fields,
		})
	}

	var imageRef *string
	if asset, err := h.receiveImage(c, "articleImage"); err != nil {
		return h.render(c, "article_form.html", echo.Map{
			"Title":       "New Article",
			"Action":      "/news",
			"UploadError": err.Error(),
			"Form":        fields,
		})
	} else if asset != nil {
		imageRef = &asset.Ref
	}

	article, err := h.articles.Create(c.Request().Context(), identity.ID, fields["title"], fields["body"], imageRef)
	if err != nil {
		return err
	}
	return h.flashRedirect(c, "success", "Article added!", "/news/"+article.ID.String())
}

// Edit renders the pre-filled edit form. A non-author is turned away to the
// article's read view before anything else happens.
func (h *ArticleHandler) Edit(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errs.ErrNotFound
	}
	article, err := h.articles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if article.AuthorID != identity.ID {
		return h.flashRedirect(c, "danger", "Not Authorized!", "/news/"+article.ID.String())
	}
	return h.render(c, "article_form.html", echo.Map{
		"Title":  "Edit Article",
		"Action": "/news/" + article.ID.String(),
		"Form": map[string]string{
			"title": article.Title,
			"body":  article.Body,
		},
	})
}

// Update applies the submitted changes. The service authorizes before it
// writes; a denial becomes a flash and a redirect to the read view.
func (h *ArticleHandler) Update(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errs.ErrNotFound
	}
	fields := map[string]string{
		"title": strings.TrimSpace(c.FormValue("title")),
		"body":  strings.TrimSpace(c.FormValue("body")),
	}

	if result := h.pipeline.Run(fields, articleRules); !result.OK() {
		return h.render(c, "article_form.html", echo.Map{
			"Title":  "Edit Article",
			"Action": "/news/" + id.String(),
			"Errors": result,
			"Form":   fields,
		})
	}

	p := model.ArticlePatch{
		Title: patch.Set(fields["title"]),
		Body:  patch.Set(fields["body"]),
	}
	if asset, err := h.receiveImage(c, "articleImage"); err != nil {
		return h.render(c, "article_form.html", echo.Map{
			"Title":       "Edit Article",
			"Action":      "/news/" + id.String(),
			"UploadError": err.Error(),
			"Form":        fields,
		})
	} else if asset != nil {
		p.ImageRef = patch.Set(asset.Ref)
	}

	if _, err := h.articles.Update(c.Request().Context(), identity.ID, id, p); err != nil {
		if errors.Is(err, errs.ErrNotAuthorized) {
			return h.flashRedirect(c, "danger", "Not Authorized!", "/news/"+id.String())
		}
		return err
	}
	return h.flashRedirect(c, "success", "Article updated!", "/news/"+id.String())
}

// Delete removes an article. The route is called from the collection page
// script, so outcomes are status codes instead of rendered pages; the flash
// still lands on the page the script navigates to next.
func (h *ArticleHandler) Delete(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Page Not Found"})
	}

	if err := h.articles.Delete(c.Request().Context(), identity.ID, id); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Page Not Found"})
		case errors.Is(err, errs.ErrNotAuthorized):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Not Authorized!"})
		default:
			return err
		}
	}

	if scope := session.ScopeFrom(c); scope != "" {
		_ = h.flash.Push(c.Request().Context(), scope, "success", "Article deleted!")
	}
	return c.NoContent(http.StatusOK)
}

// receiveImage stores an optional upload from field. A missing file part is
// not an error here: the caller simply gets no asset.
func (h *ArticleHandler) receiveImage(c echo.Context, field string) (*upload.Asset, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	asset, err := h.uploads.ReceiveImage(fh)
	if err != nil {
		return nil, err
	}
	return asset, nil
}
