package model

type Deck struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	State       int    `json:"state"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}

// DeckSettings is the mutable non-slide part of a deck. It is what
// updateSettings writes and what a snapshot carries besides slides.
type DeckSettings struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
}
