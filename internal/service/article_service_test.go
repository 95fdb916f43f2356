package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/patch"
)

// MockArticleRepository is a mock implementation of ArticleRepository.
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Update(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) ListRecent(ctx context.Context, limit int) ([]model.Article, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockArticleRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Article, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func storedArticle(id, authorID uuid.UUID) *model.Article {
	return &model.Article{
		ID:       id,
		Title:    "Original title",
		Body:     "Original body",
		AuthorID: authorID,
	}
}

func TestArticleService_Update_Ownership(t *testing.T) {
	articleID := uuid.New()
	author := uuid.New()
	stranger := uuid.New()

	t.Run("author may update", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(storedArticle(articleID, author), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(a *model.Article) bool {
			return a.Title == "New title" && a.Body == "Original body"
		})).Return(nil)

		svc := NewArticleService(repo)
		updated, err := svc.Update(context.Background(), author, articleID, model.ArticlePatch{
			Title: patch.Set("New title"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		repo.AssertExpectations(t)
	})

	t.Run("non-author is denied before any write", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(storedArticle(articleID, author), nil)

		svc := NewArticleService(repo)
		_, err := svc.Update(context.Background(), stranger, articleID, model.ArticlePatch{
			Title: patch.Set("Hijacked"),
		})

		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing article is not found, not unauthorized", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(repo)
		_, err := svc.Update(context.Background(), stranger, articleID, model.ArticlePatch{})

		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NotErrorIs(t, err, errs.ErrNotAuthorized)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestArticleService_Delete_Ownership(t *testing.T) {
	articleID := uuid.New()
	author := uuid.New()
	stranger := uuid.New()

	t.Run("author may delete", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(storedArticle(articleID, author), nil)
		repo.On("Delete", mock.Anything, articleID).Return(nil)

		svc := NewArticleService(repo)
		assert.NoError(t, svc.Delete(context.Background(), author, articleID))
		repo.AssertExpectations(t)
	})

	t.Run("non-author is denied and the article stays", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(storedArticle(articleID, author), nil)

		svc := NewArticleService(repo)
		err := svc.Delete(context.Background(), stranger, articleID)

		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing article", func(t *testing.T) {
		repo := new(MockArticleRepository)
		repo.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(repo)
		err := svc.Delete(context.Background(), author, articleID)

		assert.ErrorIs(t, err, errs.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestArticleService_Create(t *testing.T) {
	author := uuid.New()
	ref := "/uploads/pic.png"

	repo := new(MockArticleRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Article) bool {
		return a.AuthorID == author && a.Title == "Hello" && a.ImageRef != nil && *a.ImageRef == ref
	})).Return(nil)

	svc := NewArticleService(repo)
	article, err := svc.Create(context.Background(), author, "Hello", "World", &ref)

	assert.NoError(t, err)
	assert.Equal(t, author, article.AuthorID)
	repo.AssertExpectations(t)
}

func TestArticleService_ListByAuthor(t *testing.T) {
	author := uuid.New()
	mine := []model.Article{
		{ID: uuid.New(), Title: "Second", AuthorID: author},
		{ID: uuid.New(), Title: "First", AuthorID: author},
	}

	repo := new(MockArticleRepository)
	repo.On("ListByAuthor", mock.Anything, author).Return(mine, nil)

	svc := NewArticleService(repo)
	articles, err := svc.ListByAuthor(context.Background(), author)

	assert.NoError(t, err)
	assert.Equal(t, mine, articles)
	repo.AssertExpectations(t)
}

func TestArticleService_Get_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockArticleRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewArticleService(repo)
	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
