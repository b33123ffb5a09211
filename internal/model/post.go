package model

import "time"

// postPreviewLength is how many characters of the text String() shows.
const postPreviewLength = 15

// Post is a blog entry.
//
// AuthorID is always set. GroupID is nil when the post is not filed under a
// group. Image is the media store key of the attached picture, "" if none.
//
// Author and Group are filled by the store on reads (a single JOIN) so list
// pages can show the author's username and group title without extra queries.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	Text      string    `json:"text"      db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	GroupID   *string   `json:"groupId"   db:"group_id"`
	Image     string    `json:"image"     db:"image"`

	Author *User  `json:"author,omitempty" db:"-"`
	Group  *Group `json:"group,omitempty"  db:"-"`
}

// String returns the first characters of the text.
func (p *Post) String() string {
	r := []rune(p.Text)
	if len(r) <= postPreviewLength {
		return p.Text
	}
	return string(r[:postPreviewLength])
}

// HasGroup reports whether the post is filed under a group.
func (p *Post) HasGroup() bool {
	return p.GroupID != nil && *p.GroupID != ""
}
