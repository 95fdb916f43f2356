package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/repository"
)

const articleListLimit = 100

// ArticleService handles article reads and ownership-scoped mutations.
type ArticleService interface {
	List(ctx context.Context) ([]model.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)
	Create(ctx context.Context, authorID uuid.UUID, title, body string, imageRef *string) (*model.Article, error)
	Update(ctx context.Context, identityID, id uuid.UUID, p model.ArticlePatch) (*model.Article, error)
	Delete(ctx context.Context, identityID, id uuid.UUID) error
}

type articleService struct {
	articles repository.ArticleRepository
}

// NewArticleService creates a new article service.
func NewArticleService(articles repository.ArticleRepository) ArticleService {
	return &articleService{articles: articles}
}

// List returns the newest articles.
func (s *articleService) List(ctx context.Context) ([]model.Article, error) {
	articles, err := s.articles.ListRecent(ctx, articleListLimit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// ListByAuthor returns one identity's articles, newest first.
func (s *articleService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Article, error) {
	articles, err := s.articles.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list author articles: %w", err)
	}
	return articles, nil
}

// Get returns one article. Reads are not ownership-scoped.
func (s *articleService) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return article, nil
}

// Create stores a new article owned by the authenticated identity.
func (s *articleService) Create(ctx context.Context, authorID uuid.UUID, title, body string, imageRef *string) (*model.Article, error) {
	article := &model.Article{
		Title:    title,
		Body:     body,
		AuthorID: authorID,
		ImageRef: imageRef,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// Update applies a partial update to an article. The ownership check runs
// after the lookup and before any field is touched: a missing record is
// ErrNotFound, a foreign author is ErrNotAuthorized, and in neither case is
// anything written.
func (s *articleService) Update(ctx context.Context, identityID, id uuid.UUID, p model.ArticlePatch) (*model.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(identityID, article.AuthorID); err != nil {
		return nil, err
	}

	p.Apply(article)
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

// Delete removes an article after the same lookup-then-authorize sequence
// as Update.
func (s *articleService) Delete(ctx context.Context, identityID, id uuid.UUID) error {
	article, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(identityID, article.AuthorID); err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// authorize allows a mutation iff the identity owns the resource.
func authorize(identityID, authorID uuid.UUID) error {
	if identityID != authorID {
		return errs.ErrNotAuthorized
	}
	return nil
}
