package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/model"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/internal/service"
	"github.com/xxxsen/mslide/test/testutil"
)

func newDeckService(db *sql.DB) *service.DeckService {
	return service.NewDeckService(db, repo.NewDeckRepo(db), repo.NewSlideRepo(db), repo.NewShareRepo(db), repo.NewUserRepo(db))
}

func createTestUser(t *testing.T, db *sql.DB, name string) *model.User {
	t.Helper()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           testutil.NewID(),
		Email:        testutil.NewID() + "@example.com",
		Name:         name,
		PasswordHash: "irrelevant",
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, repo.NewUserRepo(db).Create(context.Background(), user))
	return user
}

func TestDeckServiceCreateAndGet(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := newDeckService(db)
	userID := testutil.NewID()

	_, err := decks.Create(context.Background(), userID, service.DeckCreateInput{Title: "   "})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	detail, err := decks.Create(context.Background(), userID, service.DeckCreateInput{
		Title:       "quarterly pitch",
		Description: "numbers and plans",
		Theme:       "dark",
		Slides: []service.SlideInput{
			{Content: "intro", Notes: "smile"},
			{Content: "numbers", Style: map[string]interface{}{"background": "#000"}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "quarterly pitch", detail.Deck.Title)
	require.Len(t, detail.Slides, 2)
	require.Equal(t, 0, detail.Slides[0].Position)
	require.Equal(t, 1, detail.Slides[1].Position)

	fetched, err := decks.Get(context.Background(), userID, detail.Deck.ID)
	require.NoError(t, err)
	require.Equal(t, "dark", fetched.Deck.Theme)
	require.Len(t, fetched.Slides, 2)
	require.Equal(t, "smile", fetched.Slides[0].Notes)
	require.Equal(t, "#000", fetched.Slides[1].Style["background"])

	_, err = decks.Get(context.Background(), testutil.NewID(), detail.Deck.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeckServiceReplaceSlides(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := newDeckService(db)
	userID := testutil.NewID()

	detail, err := decks.Create(context.Background(), userID, service.DeckCreateInput{
		Title:  "pitch",
		Slides: []service.SlideInput{{Content: "one"}, {Content: "two"}},
	})
	require.NoError(t, err)
	deckID := detail.Deck.ID
	keptID := detail.Slides[1].ID

	// reorder: the surviving slide moves to the front and keeps its id,
	// the new one slots in behind it
	slides, err := decks.ReplaceSlides(context.Background(), userID, deckID, []service.SlideInput{
		{ID: keptID, Content: "two reworked"},
		{Content: "three"},
	})
	require.NoError(t, err)
	require.Len(t, slides, 2)
	require.Equal(t, keptID, slides[0].ID)
	require.Equal(t, 0, slides[0].Position)
	require.NotEmpty(t, slides[1].ID)
	require.Equal(t, 1, slides[1].Position)

	fetched, err := decks.Get(context.Background(), userID, deckID)
	require.NoError(t, err)
	require.Len(t, fetched.Slides, 2)
	require.Equal(t, "two reworked", fetched.Slides[0].Content)
	require.GreaterOrEqual(t, fetched.Deck.Mtime, detail.Deck.Mtime)

	_, err = decks.ReplaceSlides(context.Background(), testutil.NewID(), deckID, nil)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeckServiceListAndDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := newDeckService(db)
	userID := testutil.NewID()

	first, err := decks.Create(context.Background(), userID, service.DeckCreateInput{Title: "alpha pitch"})
	require.NoError(t, err)
	_, err = decks.Create(context.Background(), userID, service.DeckCreateInput{Title: "beta review"})
	require.NoError(t, err)

	page, err := decks.List(context.Background(), userID, "", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = decks.List(context.Background(), userID, "pitch", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "alpha pitch", page.Items[0].Title)

	share, err := decks.CreateShare(context.Background(), userID, first.Deck.ID)
	require.NoError(t, err)

	require.NoError(t, decks.Delete(context.Background(), userID, first.Deck.ID))

	_, err = decks.Get(context.Background(), userID, first.Deck.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	// deleting the deck kills its public link too
	_, err = decks.GetShareByToken(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	page, err = decks.List(context.Background(), userID, "", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
}

func TestDeckServiceShareLifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := newDeckService(db)
	owner := createTestUser(t, db, "Pat Sharer")

	detail, err := decks.Create(context.Background(), owner.ID, service.DeckCreateInput{
		Title:  "public pitch",
		Slides: []service.SlideInput{{Content: "hello"}},
	})
	require.NoError(t, err)
	deckID := detail.Deck.ID

	active, err := decks.GetActiveShare(context.Background(), owner.ID, deckID)
	require.NoError(t, err)
	require.Nil(t, active)

	share, err := decks.CreateShare(context.Background(), owner.ID, deckID)
	require.NoError(t, err)
	require.Equal(t, repo.ShareStateActive, share.State)
	require.NotEmpty(t, share.Token)

	active, err = decks.GetActiveShare(context.Background(), owner.ID, deckID)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, share.Token, active.Token)

	public, err := decks.GetShareByToken(context.Background(), share.Token)
	require.NoError(t, err)
	require.Equal(t, "public pitch", public.Deck.Title)
	require.Len(t, public.Slides, 1)
	require.Equal(t, "Pat Sharer", public.Author)

	shared, err := decks.ListShared(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	require.Equal(t, deckID, shared[0].ID)
	require.Equal(t, share.Token, shared[0].Token)

	// re-sharing rotates the token and revokes the old one
	rotated, err := decks.CreateShare(context.Background(), owner.ID, deckID)
	require.NoError(t, err)
	require.NotEqual(t, share.Token, rotated.Token)

	_, err = decks.GetShareByToken(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = decks.GetShareByToken(context.Background(), rotated.Token)
	require.NoError(t, err)

	require.NoError(t, decks.RevokeShare(context.Background(), owner.ID, deckID))

	active, err = decks.GetActiveShare(context.Background(), owner.ID, deckID)
	require.NoError(t, err)
	require.Nil(t, active)
	_, err = decks.GetShareByToken(context.Background(), rotated.Token)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	shared, err = decks.ListShared(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Empty(t, shared)
}
