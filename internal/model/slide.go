package model

type Slide struct {
	ID       string                 `json:"id"`
	DeckID   string                 `json:"deck_id"`
	Content  string                 `json:"content"`
	Layout   string                 `json:"layout"`
	Style    map[string]interface{} `json:"style,omitempty"`
	Notes    string                 `json:"notes"`
	Position int                    `json:"position"`
	Ctime    int64                  `json:"ctime"`
	Mtime    int64                  `json:"mtime"`
}
