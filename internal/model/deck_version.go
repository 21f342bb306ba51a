package model

const (
	ChangeSlideAdded      = "slide_added"
	ChangeSlideDeleted    = "slide_deleted"
	ChangeSlideModified   = "slide_modified"
	ChangeThemeChanged    = "theme_changed"
	ChangeSettingsChanged = "settings_changed"
)

const (
	SlideDiffAdded     = "added"
	SlideDiffDeleted   = "deleted"
	SlideDiffModified  = "modified"
	SlideDiffUnchanged = "unchanged"
)

// DeckVersion is one entry in a deck's history. Snapshot and Changes are
// stored as JSON columns and are immutable once written; only name,
// description and the milestone flag may change afterwards.
type DeckVersion struct {
	ID          string           `json:"id"`
	DeckID      string           `json:"deck_id"`
	UserID      string           `json:"user_id"`
	Version     int              `json:"version"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IsAutoSave  bool             `json:"is_auto_save"`
	IsMilestone bool             `json:"is_milestone"`
	Snapshot    *DeckSnapshot    `json:"snapshot,omitempty"`
	Changes     []*VersionChange `json:"changes"`
	CreatedBy   *UserRef         `json:"created_by,omitempty"`
	Ctime       int64            `json:"ctime"`
}

// DeckSnapshot is the deep copy of a deck captured at version-creation
// time: settings plus the full slide sequence in position order.
type DeckSnapshot struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Theme       string           `json:"theme"`
	Slides      []*SlideSnapshot `json:"slides"`
}

type SlideSnapshot struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Layout   string                 `json:"layout"`
	Style    map[string]interface{} `json:"style,omitempty"`
	Notes    string                 `json:"notes"`
	Position int                    `json:"position"`
}

type VersionChange struct {
	Type        string         `json:"type"`
	SlideID     string         `json:"slide_id,omitempty"`
	Description string         `json:"description"`
	Fields      []*FieldChange `json:"fields,omitempty"`
}

type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// SlideDiff is one slide's row in a full comparison view. Unchanged
// slides are included with status "unchanged" and no field changes.
type SlideDiff struct {
	SlideID string         `json:"slide_id"`
	Status  string         `json:"status"`
	Changes []*FieldChange `json:"changes,omitempty"`
}

type ComparisonSummary struct {
	SlidesAdded    int `json:"slides_added"`
	SlidesDeleted  int `json:"slides_deleted"`
	SlidesModified int `json:"slides_modified"`
	TotalChanges   int `json:"total_changes"`
}

type VersionComparison struct {
	DeckID        string             `json:"deck_id"`
	FromVersionID string             `json:"from_version_id"`
	ToVersionID   string             `json:"to_version_id"`
	Slides        []*SlideDiff       `json:"slides"`
	Summary       *ComparisonSummary `json:"summary"`
}
