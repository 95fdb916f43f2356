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

// ProfileService handles the lazily-created per-identity profile.
type ProfileService interface {
	GetByAuthor(ctx context.Context, authorID uuid.UUID) (*model.Profile, error)
	Upsert(ctx context.Context, authorID uuid.UUID, p model.ProfilePatch) (*model.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

// GetByAuthor returns the profile of an identity, or ErrNotFound when the
// identity has never edited one.
func (s *profileService) GetByAuthor(ctx context.Context, authorID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.FindByAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return profile, nil
}

// Upsert reconciles a partial field set against the identity's profile.
// An existing profile gets only the present patch fields applied; a missing
// one is created from the author ID plus the patch. Applying the same patch
// twice yields the same stored state.
func (s *profileService) Upsert(ctx context.Context, authorID uuid.UUID, p model.ProfilePatch) (*model.Profile, error) {
	existing, err := s.profiles.FindByAuthor(ctx, authorID)
	if err == nil {
		p.Apply(existing)
		if err := s.profiles.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	profile := &model.Profile{AuthorID: authorID}
	p.Apply(profile)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}
