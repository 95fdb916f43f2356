package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pressroom/internal/patch"
)

// Article represents a published news article. AuthorID references the
// identity that created it; only that identity may mutate the record.
type Article struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:char(36);not null;index"`
	ImageRef  *string   `json:"image_ref,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArticlePatch is a partial update to an article. Absent fields leave the
// stored value untouched.
type ArticlePatch struct {
	Title    patch.String
	Body     patch.String
	ImageRef patch.String
}

// Apply copies the present fields onto the article.
func (p ArticlePatch) Apply(a *Article) {
	p.Title.Apply(&a.Title)
	p.Body.Apply(&a.Body)
	p.ImageRef.ApplyPtr(&a.ImageRef)
}
