package model

// DeckLineage records that a deck was branched off another deck at a
// specific version, so branch trees stay reconstructable.
type DeckLineage struct {
	ID                   string `json:"id"`
	ParentDeckID         string `json:"parent_deck_id"`
	ChildDeckID          string `json:"child_deck_id"`
	BranchPointVersionID string `json:"branch_point_version_id"`
	BranchName           string `json:"branch_name"`
	Ctime                int64  `json:"ctime"`
}
