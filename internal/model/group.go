package model

// Group is a topical community posts can be filed under. Groups are created
// out-of-band (seed tool or direct database access) and never edited by the
// request handlers.
type Group struct {
	ID          string `json:"id"          db:"id"`
	Title       string `json:"title"       db:"title"`
	Slug        string `json:"slug"        db:"slug"` // unique
	Description string `json:"description" db:"description"`
}

func (g *Group) String() string {
	return g.Title
}
