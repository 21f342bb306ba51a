package model

// LibraryItem is a named, reusable set of slides saved from a deck (or
// provided directly) that new decks can be instantiated from.
type LibraryItem struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Slides      []*SlideSnapshot `json:"slides"`
	Ctime       int64            `json:"ctime"`
	Mtime       int64            `json:"mtime"`
}

type LibraryItemMeta struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SlideCount  int    `json:"slide_count"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
