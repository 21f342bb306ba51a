package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
)

const maxSlidesPerDeck = 500

// DeckService manages the live state of decks: the deck row, its slide
// sequence and public share links. History is VersionService territory;
// creating a deck does not write a version, history starts with the
// first explicit checkpoint.
type DeckService struct {
	db     *sql.DB
	decks  *repo.DeckRepo
	slides *repo.SlideRepo
	shares *repo.ShareRepo
	users  *repo.UserRepo
}

func NewDeckService(db *sql.DB, decks *repo.DeckRepo, slides *repo.SlideRepo, shares *repo.ShareRepo, users *repo.UserRepo) *DeckService {
	return &DeckService{db: db, decks: decks, slides: slides, shares: shares, users: users}
}

type SlideInput struct {
	ID      string                 `json:"id"`
	Content string                 `json:"content"`
	Layout  string                 `json:"layout"`
	Style   map[string]interface{} `json:"style"`
	Notes   string                 `json:"notes"`
}

type DeckCreateInput struct {
	Title       string
	Description string
	Theme       string
	Slides      []SlideInput
}

type DeckDetail struct {
	Deck   *model.Deck   `json:"deck"`
	Slides []model.Slide `json:"slides"`
}

type DeckPage struct {
	Items []model.Deck `json:"items"`
	Total int          `json:"total"`
}

type PublicDeckDetail struct {
	Deck   *model.Deck   `json:"deck"`
	Slides []model.Slide `json:"slides"`
	Author string        `json:"author"`
}

func (s *DeckService) Create(ctx context.Context, userID string, input DeckCreateInput) (*DeckDetail, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, appErr.ErrInvalid
	}
	if len(input.Slides) > maxSlidesPerDeck {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	deck := &model.Deck{
		ID:          newID(),
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		Theme:       input.Theme,
		State:       repo.DeckStateNormal,
		Ctime:       now,
		Mtime:       now,
	}
	slides := slidesFromInput(deck.ID, input.Slides, now)
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.decks.WithTx(tx).Create(ctx, deck); err != nil {
			return err
		}
		if len(slides) == 0 {
			return nil
		}
		return s.slides.WithTx(tx).BulkCreate(ctx, slides)
	})
	if err != nil {
		return nil, err
	}
	return &DeckDetail{Deck: deck, Slides: derefSlides(slides)}, nil
}

func (s *DeckService) Get(ctx context.Context, userID, deckID string) (*DeckDetail, error) {
	deck, err := s.decks.GetByID(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	slides, err := s.slides.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return &DeckDetail{Deck: deck, Slides: slides}, nil
}

func (s *DeckService) List(ctx context.Context, userID, search string, limit, offset uint) (*DeckPage, error) {
	items, err := s.decks.List(ctx, userID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.decks.Count(ctx, userID, search)
	if err != nil {
		return nil, err
	}
	return &DeckPage{Items: items, Total: total}, nil
}

func (s *DeckService) UpdateSettings(ctx context.Context, userID, deckID string, settings model.DeckSettings) (*model.Deck, error) {
	settings.Title = strings.TrimSpace(settings.Title)
	if settings.Title == "" {
		return nil, appErr.ErrInvalid
	}
	if err := s.decks.UpdateSettings(ctx, userID, deckID, settings, timeutil.NowUnix()); err != nil {
		return nil, err
	}
	return s.decks.GetByID(ctx, userID, deckID)
}

// ReplaceSlides swaps the deck's full slide sequence for the given one.
// Positions follow input order; slides without an id get a fresh one,
// slides carrying an id keep it so version diffs can track them across
// edits. The deck row is locked so a concurrent checkpoint never sees a
// half-replaced deck.
func (s *DeckService) ReplaceSlides(ctx context.Context, userID, deckID string, inputs []SlideInput) ([]model.Slide, error) {
	if len(inputs) > maxSlidesPerDeck {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	slides := slidesFromInput(deckID, inputs, now)
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.decks.WithTx(tx).GetForUpdate(ctx, userID, deckID); err != nil {
			return err
		}
		if err := s.slides.WithTx(tx).DeleteByDeck(ctx, deckID); err != nil {
			return err
		}
		if len(slides) > 0 {
			if err := s.slides.WithTx(tx).BulkCreate(ctx, slides); err != nil {
				return err
			}
		}
		return s.decks.WithTx(tx).Touch(ctx, userID, deckID, now)
	})
	if err != nil {
		return nil, err
	}
	return derefSlides(slides), nil
}

// Delete soft-deletes the deck and revokes any active share link.
// History rows stay in place; they become unreachable through the API
// since every version operation re-checks deck ownership first.
func (s *DeckService) Delete(ctx context.Context, userID, deckID string) error {
	now := timeutil.NowUnix()
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.decks.WithTx(tx).Delete(ctx, userID, deckID, now); err != nil {
			return err
		}
		return s.shares.WithTx(tx).RevokeByDeck(ctx, userID, deckID, now)
	})
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("deck deleted", zap.String("deck_id", deckID))
	return nil
}

func (s *DeckService) CreateShare(ctx context.Context, userID, deckID string) (*model.Share, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	if err := s.shares.RevokeByDeck(ctx, userID, deckID, now); err != nil {
		return nil, err
	}
	share := &model.Share{
		ID:     newID(),
		UserID: userID,
		DeckID: deckID,
		Token:  newToken(),
		State:  repo.ShareStateActive,
		Ctime:  now,
		Mtime:  now,
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (s *DeckService) RevokeShare(ctx context.Context, userID, deckID string) error {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return err
	}
	return s.shares.RevokeByDeck(ctx, userID, deckID, timeutil.NowUnix())
}

func (s *DeckService) GetActiveShare(ctx context.Context, userID, deckID string) (*model.Share, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	share, err := s.shares.GetActiveByDeck(ctx, userID, deckID)
	if appErr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return share, nil
}

// GetShareByToken resolves a public share link to the deck it exposes.
// No authentication involved; revoked tokens read as missing.
func (s *DeckService) GetShareByToken(ctx context.Context, token string) (*PublicDeckDetail, error) {
	share, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if share.State != repo.ShareStateActive {
		return nil, appErr.ErrNotFound
	}
	deck, err := s.decks.GetByID(ctx, share.UserID, share.DeckID)
	if err != nil {
		return nil, err
	}
	slides, err := s.slides.ListByDeck(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, share.UserID)
	if err != nil {
		return nil, err
	}
	author := user.Name
	if author == "" {
		author = user.Email
	}
	return &PublicDeckDetail{Deck: deck, Slides: slides, Author: author}, nil
}

func (s *DeckService) ListShared(ctx context.Context, userID string) ([]repo.SharedDeck, error) {
	return s.shares.ListActiveDecks(ctx, userID)
}

func slidesFromInput(deckID string, inputs []SlideInput, now int64) []*model.Slide {
	out := make([]*model.Slide, 0, len(inputs))
	for i, input := range inputs {
		id := input.ID
		if id == "" {
			id = newID()
		}
		out = append(out, &model.Slide{
			ID:       id,
			DeckID:   deckID,
			Content:  input.Content,
			Layout:   input.Layout,
			Style:    copyStyle(input.Style),
			Notes:    input.Notes,
			Position: i,
			Ctime:    now,
			Mtime:    now,
		})
	}
	return out
}

func derefSlides(slides []*model.Slide) []model.Slide {
	out := make([]model.Slide, 0, len(slides))
	for _, slide := range slides {
		out = append(out, *slide)
	}
	return out
}
