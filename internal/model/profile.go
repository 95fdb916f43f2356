package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pressroom/internal/patch"
)

// Profile holds the optional contact details of an identity. At most one
// profile exists per identity; it is created lazily on the first edit.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:char(36);uniqueIndex;not null"`
	Phone     *string   `json:"phone,omitempty" gorm:"size:64"`
	Position  *string   `json:"position,omitempty" gorm:"size:255"`
	ImageRef  *string   `json:"image_ref,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProfilePatch is a partial update to a profile. Absent fields leave the
// stored value untouched; an absent ImageRef in particular preserves any
// previously uploaded image.
type ProfilePatch struct {
	Phone    patch.String
	Position patch.String
	ImageRef patch.String
}

// Apply copies the present fields onto the profile.
func (p ProfilePatch) Apply(dst *Profile) {
	p.Phone.ApplyPtr(&dst.Phone)
	p.Position.ApplyPtr(&dst.Position)
	p.ImageRef.ApplyPtr(&dst.ImageRef)
}
