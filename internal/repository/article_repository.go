package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pressroom/internal/model"
)

// ArticleRepository defines article persistence operations.
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	ListRecent(ctx context.Context, limit int) ([]model.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Article, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Create creates a new article.
func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// Update updates an existing article.
func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

// Delete removes an article by ID.
func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Article{}).Error
}

// FindByID finds an article by ID with its author preloaded.
func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// ListRecent lists the newest articles with authors preloaded.
func (r *articleRepository) ListRecent(ctx context.Context, limit int) ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").Limit(limit).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListByAuthor lists the articles written by one identity.
func (r *articleRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).
		Order("created_at DESC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}
