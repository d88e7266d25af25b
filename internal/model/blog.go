package model

import "time"

// BlogStatus controls public visibility of a blog post.
type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

// Valid reports whether s is a known status.
func (s BlogStatus) Valid() bool {
	return s == BlogDraft || s == BlogPublished
}

// ExcerptLength is the number of content characters used when no excerpt is given.
const ExcerptLength = 150

// Blog is a post written in the admin back-office.
type Blog struct {
	ID        string     `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Title     string     `json:"title" bson:"title" gorm:"size:255;not null"`
	Content   string     `json:"content" bson:"content" gorm:"type:text;not null"`
	Excerpt   string     `json:"excerpt" bson:"excerpt" gorm:"type:text"`
	Thumbnail string     `json:"thumbnail" bson:"thumbnail" gorm:"size:1024"`
	Author    string     `json:"author" bson:"author" gorm:"size:255;not null"`
	AuthorID  string     `json:"authorId" bson:"authorId" gorm:"size:24;not null;index"`
	Status    BlogStatus `json:"status" bson:"status" gorm:"size:16;not null;default:draft;index"`
	Views     int64      `json:"views" bson:"views" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// DefaultExcerpt derives an excerpt from the first ExcerptLength characters of content.
func DefaultExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength])
}

// BlogPatch holds the fields of a partial blog update. Nil fields are left unchanged.
type BlogPatch struct {
	Title     *string
	Content   *string
	Excerpt   *string
	Thumbnail *string
	Status    *BlogStatus
}

// Empty reports whether the patch changes nothing.
func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Excerpt == nil && p.Thumbnail == nil && p.Status == nil
}

// Apply copies the set fields of p onto b.
func (p BlogPatch) Apply(b *Blog) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.Excerpt != nil {
		b.Excerpt = *p.Excerpt
	}
	if p.Thumbnail != nil {
		b.Thumbnail = *p.Thumbnail
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
}
