package service

import (
	"reflect"

	"github.com/xxxsen/mslide/internal/model"
)

// slideFieldChanges compares two snapshots of the same slide field by
// field. Fields are checked in a fixed order so one entry per slide has
// a stable primary field; style is compared structurally since it is a
// decoded JSON map.
func slideFieldChanges(prev, curr *model.SlideSnapshot) []*model.FieldChange {
	changes := make([]*model.FieldChange, 0, 5)
	if prev.Content != curr.Content {
		changes = append(changes, &model.FieldChange{Field: "content", OldValue: prev.Content, NewValue: curr.Content})
	}
	if prev.Layout != curr.Layout {
		changes = append(changes, &model.FieldChange{Field: "layout", OldValue: prev.Layout, NewValue: curr.Layout})
	}
	if !reflect.DeepEqual(prev.Style, curr.Style) {
		changes = append(changes, &model.FieldChange{Field: "style", OldValue: prev.Style, NewValue: curr.Style})
	}
	if prev.Notes != curr.Notes {
		changes = append(changes, &model.FieldChange{Field: "notes", OldValue: prev.Notes, NewValue: curr.Notes})
	}
	if prev.Position != curr.Position {
		changes = append(changes, &model.FieldChange{Field: "position", OldValue: prev.Position, NewValue: curr.Position})
	}
	return changes
}

type slidePair struct {
	prev *model.SlideSnapshot
	curr *model.SlideSnapshot
}

// diffSlideSets is the single diff primitive both the change log and
// the comparison view are built on. Deletions come in previous-side
// order, everything else in current-side order.
func diffSlideSets(prev, curr []*model.SlideSnapshot) (deleted []*model.SlideSnapshot, added []*model.SlideSnapshot, modified []slidePair, unchanged []slidePair) {
	prevByID := make(map[string]*model.SlideSnapshot, len(prev))
	for _, slide := range prev {
		prevByID[slide.ID] = slide
	}
	currByID := make(map[string]*model.SlideSnapshot, len(curr))
	for _, slide := range curr {
		currByID[slide.ID] = slide
	}
	for _, slide := range prev {
		if _, ok := currByID[slide.ID]; !ok {
			deleted = append(deleted, slide)
		}
	}
	for _, slide := range curr {
		before, ok := prevByID[slide.ID]
		if !ok {
			added = append(added, slide)
			continue
		}
		if len(slideFieldChanges(before, slide)) > 0 {
			modified = append(modified, slidePair{prev: before, curr: slide})
		} else {
			unchanged = append(unchanged, slidePair{prev: before, curr: slide})
		}
	}
	return deleted, added, modified, unchanged
}

func modifiedDescription(fields []*model.FieldChange) string {
	if len(fields) == 0 {
		return "Slide modified"
	}
	switch fields[0].Field {
	case "content":
		return "Slide content modified"
	case "layout":
		return "Slide layout modified"
	case "style":
		return "Slide style modified"
	case "notes":
		return "Slide notes modified"
	case "position":
		return "Slide position modified"
	}
	return "Slide modified"
}

// detectChanges builds the change log stored on a new version: slide
// deletions, then additions, then modifications, then deck-level
// entries. A nil previous snapshot yields the synthetic initial entry.
func detectChanges(prev, curr *model.DeckSnapshot) []*model.VersionChange {
	if prev == nil {
		return []*model.VersionChange{{
			Type:        model.ChangeSlideAdded,
			Description: "Initial version created",
		}}
	}
	deleted, added, modified, _ := diffSlideSets(prev.Slides, curr.Slides)
	changes := make([]*model.VersionChange, 0, len(deleted)+len(added)+len(modified)+2)
	for _, slide := range deleted {
		changes = append(changes, &model.VersionChange{
			Type:        model.ChangeSlideDeleted,
			SlideID:     slide.ID,
			Description: "Slide deleted",
		})
	}
	for _, slide := range added {
		changes = append(changes, &model.VersionChange{
			Type:        model.ChangeSlideAdded,
			SlideID:     slide.ID,
			Description: "Slide added",
		})
	}
	for _, pair := range modified {
		fields := slideFieldChanges(pair.prev, pair.curr)
		changes = append(changes, &model.VersionChange{
			Type:        model.ChangeSlideModified,
			SlideID:     pair.curr.ID,
			Description: modifiedDescription(fields),
			Fields:      fields,
		})
	}
	if prev.Theme != curr.Theme {
		changes = append(changes, &model.VersionChange{
			Type:        model.ChangeThemeChanged,
			Description: "Deck theme changed",
			Fields: []*model.FieldChange{
				{Field: "theme", OldValue: prev.Theme, NewValue: curr.Theme},
			},
		})
	}
	if prev.Title != curr.Title || prev.Description != curr.Description {
		fields := make([]*model.FieldChange, 0, 2)
		if prev.Title != curr.Title {
			fields = append(fields, &model.FieldChange{Field: "title", OldValue: prev.Title, NewValue: curr.Title})
		}
		if prev.Description != curr.Description {
			fields = append(fields, &model.FieldChange{Field: "description", OldValue: prev.Description, NewValue: curr.Description})
		}
		changes = append(changes, &model.VersionChange{
			Type:        model.ChangeSettingsChanged,
			Description: "Deck settings changed",
			Fields:      fields,
		})
	}
	return changes
}

// compareSnapshots is the complete comparison view: every slide shows
// up, including unchanged ones, with per-field old/new values.
func compareSnapshots(from, to *model.DeckSnapshot) ([]*model.SlideDiff, *model.ComparisonSummary) {
	var fromSlides, toSlides []*model.SlideSnapshot
	if from != nil {
		fromSlides = from.Slides
	}
	if to != nil {
		toSlides = to.Slides
	}
	deleted, added, modified, unchanged := diffSlideSets(fromSlides, toSlides)
	diffs := make([]*model.SlideDiff, 0, len(deleted)+len(added)+len(modified)+len(unchanged))
	for _, slide := range deleted {
		diffs = append(diffs, &model.SlideDiff{SlideID: slide.ID, Status: model.SlideDiffDeleted})
	}
	for _, slide := range added {
		diffs = append(diffs, &model.SlideDiff{SlideID: slide.ID, Status: model.SlideDiffAdded})
	}
	for _, pair := range modified {
		diffs = append(diffs, &model.SlideDiff{
			SlideID: pair.curr.ID,
			Status:  model.SlideDiffModified,
			Changes: slideFieldChanges(pair.prev, pair.curr),
		})
	}
	for _, pair := range unchanged {
		diffs = append(diffs, &model.SlideDiff{SlideID: pair.curr.ID, Status: model.SlideDiffUnchanged})
	}
	summary := &model.ComparisonSummary{
		SlidesAdded:    len(added),
		SlidesDeleted:  len(deleted),
		SlidesModified: len(modified),
	}
	summary.TotalChanges = summary.SlidesAdded + summary.SlidesDeleted + summary.SlidesModified
	return diffs, summary
}

// buildSnapshot deep-copies the live deck so later edits cannot reach
// into stored history.
func buildSnapshot(deck *model.Deck, slides []model.Slide) *model.DeckSnapshot {
	snapshot := &model.DeckSnapshot{
		Title:       deck.Title,
		Description: deck.Description,
		Theme:       deck.Theme,
		Slides:      make([]*model.SlideSnapshot, 0, len(slides)),
	}
	for _, slide := range slides {
		snapshot.Slides = append(snapshot.Slides, &model.SlideSnapshot{
			ID:       slide.ID,
			Content:  slide.Content,
			Layout:   slide.Layout,
			Style:    copyStyle(slide.Style),
			Notes:    slide.Notes,
			Position: slide.Position,
		})
	}
	return snapshot
}

func copyStyle(style map[string]interface{}) map[string]interface{} {
	if style == nil {
		return nil
	}
	out := make(map[string]interface{}, len(style))
	for k, v := range style {
		out[k] = copyStyleValue(v)
	}
	return out
}

func copyStyleValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyStyle(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyStyleValue(item)
		}
		return out
	default:
		return v
	}
}
