package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pressroom/internal/model"
)

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
	FindByAuthor(ctx context.Context, authorID uuid.UUID) (*model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update updates an existing profile.
func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// FindByAuthor finds the profile owned by an identity. The author ID is the
// upsert key: there is at most one profile per identity.
func (r *profileRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
