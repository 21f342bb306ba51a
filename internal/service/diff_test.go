package service

import (
	"testing"

	"github.com/xxxsen/mslide/internal/model"
)

func snap(title, theme string, slides ...*model.SlideSnapshot) *model.DeckSnapshot {
	return &model.DeckSnapshot{Title: title, Theme: theme, Slides: slides}
}

func TestCompareSnapshots(t *testing.T) {
	from := snap("deck", "dark",
		&model.SlideSnapshot{ID: "s1", Content: "intro", Position: 0},
		&model.SlideSnapshot{ID: "s2", Content: "middle", Position: 1},
	)
	to := snap("deck", "dark",
		&model.SlideSnapshot{ID: "s1", Content: "intro", Position: 0},
		&model.SlideSnapshot{ID: "s3", Content: "outro", Position: 1},
	)

	diffs, summary := compareSnapshots(from, to)
	if summary.SlidesAdded != 1 || summary.SlidesDeleted != 1 || summary.SlidesModified != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.TotalChanges != 2 {
		t.Fatalf("expected 2 total changes, got %d", summary.TotalChanges)
	}
	if len(diffs) != 3 {
		t.Fatalf("expected 3 slide diffs, got %d", len(diffs))
	}
	byID := make(map[string]*model.SlideDiff, len(diffs))
	for _, d := range diffs {
		byID[d.SlideID] = d
	}
	if byID["s2"].Status != model.SlideDiffDeleted {
		t.Fatalf("s2 status = %s", byID["s2"].Status)
	}
	if byID["s3"].Status != model.SlideDiffAdded {
		t.Fatalf("s3 status = %s", byID["s3"].Status)
	}
	if byID["s1"].Status != model.SlideDiffUnchanged {
		t.Fatalf("s1 status = %s", byID["s1"].Status)
	}
}

func TestCompareSnapshotsModifiedFields(t *testing.T) {
	from := snap("deck", "dark", &model.SlideSnapshot{ID: "s1", Content: "old", Layout: "title", Position: 0})
	to := snap("deck", "dark", &model.SlideSnapshot{ID: "s1", Content: "new", Layout: "title", Position: 2})

	diffs, summary := compareSnapshots(from, to)
	if summary.SlidesModified != 1 || summary.TotalChanges != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(diffs) != 1 || diffs[0].Status != model.SlideDiffModified {
		t.Fatalf("unexpected diffs: %+v", diffs)
	}
	changes := diffs[0].Changes
	if len(changes) != 2 {
		t.Fatalf("expected 2 field changes, got %d", len(changes))
	}
	if changes[0].Field != "content" || changes[0].OldValue != "old" || changes[0].NewValue != "new" {
		t.Fatalf("unexpected first change: %+v", changes[0])
	}
	if changes[1].Field != "position" {
		t.Fatalf("unexpected second change: %+v", changes[1])
	}
}

func TestDetectChangesInitialVersion(t *testing.T) {
	changes := detectChanges(nil, snap("deck", "", &model.SlideSnapshot{ID: "s1"}))
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != model.ChangeSlideAdded || changes[0].Description != "Initial version created" {
		t.Fatalf("unexpected change: %+v", changes[0])
	}
}

func TestDetectChangesOrderingAndDescriptions(t *testing.T) {
	from := snap("deck", "dark",
		&model.SlideSnapshot{ID: "s1", Content: "keep", Position: 0},
		&model.SlideSnapshot{ID: "s2", Content: "drop", Position: 1},
		&model.SlideSnapshot{ID: "s3", Content: "before", Position: 2},
	)
	to := &model.DeckSnapshot{
		Title: "renamed",
		Theme: "light",
		Slides: []*model.SlideSnapshot{
			{ID: "s1", Content: "keep", Position: 0},
			{ID: "s3", Content: "after", Position: 1},
			{ID: "s4", Content: "fresh", Position: 2},
		},
	}

	changes := detectChanges(from, to)
	if len(changes) != 5 {
		t.Fatalf("expected 5 changes, got %d: %+v", len(changes), changes)
	}
	if changes[0].Type != model.ChangeSlideDeleted || changes[0].SlideID != "s2" {
		t.Fatalf("expected s2 deletion first, got %+v", changes[0])
	}
	if changes[1].Type != model.ChangeSlideAdded || changes[1].SlideID != "s4" {
		t.Fatalf("expected s4 addition second, got %+v", changes[1])
	}
	if changes[2].Type != model.ChangeSlideModified || changes[2].SlideID != "s3" {
		t.Fatalf("expected s3 modification third, got %+v", changes[2])
	}
	if changes[2].Description != "Slide content modified" {
		t.Fatalf("unexpected description: %s", changes[2].Description)
	}
	if changes[3].Type != model.ChangeThemeChanged {
		t.Fatalf("expected theme change fourth, got %+v", changes[3])
	}
	if changes[4].Type != model.ChangeSettingsChanged {
		t.Fatalf("expected settings change last, got %+v", changes[4])
	}
	if len(changes[4].Fields) != 1 || changes[4].Fields[0].Field != "title" {
		t.Fatalf("unexpected settings fields: %+v", changes[4].Fields)
	}
}

func TestSlideFieldChangesStyle(t *testing.T) {
	prev := &model.SlideSnapshot{ID: "s1", Style: map[string]interface{}{"bg": map[string]interface{}{"color": "red"}}}
	same := &model.SlideSnapshot{ID: "s1", Style: map[string]interface{}{"bg": map[string]interface{}{"color": "red"}}}
	if got := slideFieldChanges(prev, same); len(got) != 0 {
		t.Fatalf("expected no changes for equal styles, got %+v", got)
	}

	curr := &model.SlideSnapshot{ID: "s1", Style: map[string]interface{}{"bg": map[string]interface{}{"color": "blue"}}}
	got := slideFieldChanges(prev, curr)
	if len(got) != 1 || got[0].Field != "style" {
		t.Fatalf("expected one style change, got %+v", got)
	}
}

func TestBuildSnapshotDeepCopy(t *testing.T) {
	deck := &model.Deck{Title: "deck", Theme: "dark"}
	slides := []model.Slide{
		{ID: "s1", Content: "text", Style: map[string]interface{}{"font": map[string]interface{}{"size": 12}}},
	}
	snapshot := buildSnapshot(deck, slides)

	slides[0].Style["font"].(map[string]interface{})["size"] = 99
	slides[0].Content = "mutated"

	stored := snapshot.Slides[0]
	if stored.Content != "text" {
		t.Fatalf("snapshot content mutated: %s", stored.Content)
	}
	if size := stored.Style["font"].(map[string]interface{})["size"]; size != 12 {
		t.Fatalf("snapshot style mutated: %v", size)
	}
}
