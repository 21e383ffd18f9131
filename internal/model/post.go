package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a blog post owned by exactly one user.
// The slug is derived from the title by the write path (service layer),
// not by a persistence hook, so the invariant stays independently testable.
type Post struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Title      string     `json:"title" gorm:"size:200;not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Slug       string     `json:"slug" gorm:"uniqueIndex;size:220;not null"`
	CategoryID *uuid.UUID `json:"category_id,omitempty" gorm:"type:char(36);index"`
	Tags       []string   `json:"tags" gorm:"serializer:json"`
	Published  bool       `json:"published" gorm:"default:false;index"`
	AuthorID   uuid.UUID  `json:"author_id" gorm:"type:char(36);not null;index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relations
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets the UUID before inserting the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
