package service

import (
	"context"
	"strings"

	"github.com/xxxsen/mslide/internal/model"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
)

// LibraryService stores reusable slide groups. An item is a frozen copy
// of slides, never a live reference; instantiating one stamps out a new
// deck with fresh slide ids.
type LibraryService struct {
	library *repo.LibraryRepo
	decks   *DeckService
}

func NewLibraryService(library *repo.LibraryRepo, decks *DeckService) *LibraryService {
	return &LibraryService{library: library, decks: decks}
}

type LibrarySaveInput struct {
	Name        string
	Description string
	DeckID      string       // copy slides from this deck when set
	SlideIDs    []string     // optional subset of the deck's slides
	Slides      []SlideInput // explicit payload when DeckID is empty
}

func (s *LibraryService) Save(ctx context.Context, userID string, input LibrarySaveInput) (*model.LibraryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	var snaps []*model.SlideSnapshot
	switch {
	case input.DeckID != "":
		detail, err := s.decks.Get(ctx, userID, input.DeckID)
		if err != nil {
			return nil, err
		}
		var wanted map[string]struct{}
		if len(input.SlideIDs) > 0 {
			wanted = make(map[string]struct{}, len(input.SlideIDs))
			for _, id := range input.SlideIDs {
				wanted[id] = struct{}{}
			}
		}
		for i := range detail.Slides {
			slide := &detail.Slides[i]
			if wanted != nil {
				if _, ok := wanted[slide.ID]; !ok {
					continue
				}
			}
			snaps = append(snaps, slideState(slide))
		}
	case len(input.Slides) > 0:
		for i, in := range input.Slides {
			snaps = append(snaps, &model.SlideSnapshot{
				ID:       newID(),
				Content:  in.Content,
				Layout:   in.Layout,
				Style:    copyStyle(in.Style),
				Notes:    in.Notes,
				Position: i,
			})
		}
	}
	if len(snaps) == 0 {
		return nil, appErr.ErrInvalid
	}
	item := &model.LibraryItem{
		ID:          newID(),
		UserID:      userID,
		Name:        name,
		Description: input.Description,
		Slides:      snaps,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.library.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *LibraryService) List(ctx context.Context, userID string, limit, offset uint) ([]model.LibraryItemMeta, error) {
	return s.library.List(ctx, userID, limit, offset)
}

func (s *LibraryService) Get(ctx context.Context, userID, itemID string) (*model.LibraryItem, error) {
	return s.library.GetByID(ctx, userID, itemID)
}

func (s *LibraryService) Delete(ctx context.Context, userID, itemID string) error {
	return s.library.Delete(ctx, userID, itemID)
}

// Instantiate stamps a new deck out of a library item. Slide ids are
// regenerated: library copies are independent of whatever deck the item
// was saved from.
func (s *LibraryService) Instantiate(ctx context.Context, userID, itemID, title string) (*DeckDetail, error) {
	item, err := s.library.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = item.Name
	}
	inputs := make([]SlideInput, 0, len(item.Slides))
	for _, snap := range item.Slides {
		inputs = append(inputs, SlideInput{
			Content: snap.Content,
			Layout:  snap.Layout,
			Style:   copyStyle(snap.Style),
			Notes:   snap.Notes,
		})
	}
	return s.decks.Create(ctx, userID, DeckCreateInput{
		Title:       title,
		Description: item.Description,
		Slides:      inputs,
	})
}
