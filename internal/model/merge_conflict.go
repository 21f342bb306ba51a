package model

// MergeConflict is the reconciliation record left behind when a manual
// merge hits a slide id that exists in both decks.
type MergeConflict struct {
	ID           string `json:"id"`
	SourceDeckID string `json:"source_deck_id"`
	TargetDeckID string `json:"target_deck_id"`
	SlideID      string `json:"slide_id"`
	State        int    `json:"state"`
	Resolution   string `json:"resolution,omitempty"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
