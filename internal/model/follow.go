package model

import "time"

// Follow is a directed edge: UserID follows AuthorID.
// A (UserID, AuthorID) pair is stored at most once and UserID != AuthorID.
type Follow struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
