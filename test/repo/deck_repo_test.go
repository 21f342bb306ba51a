package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/model"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/test/testutil"
)

func TestDeckRepoCRUDAndIsolation(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := repo.NewDeckRepo(db)
	userID := testutil.NewID()
	deckID := testutil.NewID()
	now := timeutil.NowUnix()
	deck := &model.Deck{
		ID:     deckID,
		UserID: userID,
		Title:  "quarterly review",
		Theme:  "dark",
		State:  repo.DeckStateNormal,
		Ctime:  now,
		Mtime:  now,
	}
	require.NoError(t, decks.Create(context.Background(), deck))

	fetched, err := decks.GetByID(context.Background(), userID, deckID)
	require.NoError(t, err)
	require.Equal(t, "quarterly review", fetched.Title)

	_, err = decks.GetByID(context.Background(), testutil.NewID(), deckID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, decks.UpdateSettings(context.Background(), userID, deckID, model.DeckSettings{
		Title: "renamed",
		Theme: "light",
	}, timeutil.NowUnix()))

	fetched, err = decks.GetByID(context.Background(), userID, deckID)
	require.NoError(t, err)
	require.Equal(t, "renamed", fetched.Title)
	require.Equal(t, "light", fetched.Theme)

	err = decks.Touch(context.Background(), testutil.NewID(), deckID, timeutil.NowUnix())
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, decks.Delete(context.Background(), userID, deckID, timeutil.NowUnix()))
	_, err = decks.GetByID(context.Background(), userID, deckID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeckRepoListAndCount(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := repo.NewDeckRepo(db)
	userID := testutil.NewID()
	now := timeutil.NowUnix()
	titles := []string{"alpha pitch", "beta pitch", "notes"}
	for i, title := range titles {
		require.NoError(t, decks.Create(context.Background(), &model.Deck{
			ID:     testutil.NewID(),
			UserID: userID,
			Title:  title,
			State:  repo.DeckStateNormal,
			Ctime:  now + int64(i),
			Mtime:  now + int64(i),
		}))
	}

	items, err := decks.List(context.Background(), userID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	// newest first
	require.Equal(t, "notes", items[0].Title)

	total, err := decks.Count(context.Background(), userID, "")
	require.NoError(t, err)
	require.Equal(t, 3, total)

	items, err = decks.List(context.Background(), userID, "pitch", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	total, err = decks.Count(context.Background(), userID, "pitch")
	require.NoError(t, err)
	require.Equal(t, 2, total)

	items, err = decks.List(context.Background(), userID, "", 2, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestDeckRepoGetForUpdateInsideTx(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := repo.NewDeckRepo(db)
	userID := testutil.NewID()
	deckID := testutil.NewID()
	now := timeutil.NowUnix()
	require.NoError(t, decks.Create(context.Background(), &model.Deck{
		ID: deckID, UserID: userID, Title: "locked", State: repo.DeckStateNormal, Ctime: now, Mtime: now,
	}))

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	locked, err := decks.WithTx(tx).GetForUpdate(context.Background(), userID, deckID)
	require.NoError(t, err)
	require.Equal(t, "locked", locked.Title)

	_, err = decks.WithTx(tx).GetForUpdate(context.Background(), userID, testutil.NewID())
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeckRepoListAutoSavePending(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	decks := repo.NewDeckRepo(db)
	versions := repo.NewVersionRepo(db)
	userID := testutil.NewID()
	now := timeutil.NowUnix()

	neverVersioned := testutil.NewID()
	require.NoError(t, decks.Create(context.Background(), &model.Deck{
		ID: neverVersioned, UserID: userID, Title: "fresh", State: repo.DeckStateNormal, Ctime: now, Mtime: now,
	}))

	upToDate := testutil.NewID()
	require.NoError(t, decks.Create(context.Background(), &model.Deck{
		ID: upToDate, UserID: userID, Title: "captured", State: repo.DeckStateNormal, Ctime: now - 100, Mtime: now - 100,
	}))
	require.NoError(t, versions.Create(context.Background(), &model.DeckVersion{
		ID:       testutil.NewID(),
		DeckID:   upToDate,
		UserID:   userID,
		Version:  1,
		Name:     "Version 1",
		Snapshot: &model.DeckSnapshot{Title: "captured"},
		Changes:  []*model.VersionChange{},
		Ctime:    now,
	}))

	pending, err := decks.ListAutoSavePending(context.Background(), 100000)
	require.NoError(t, err)
	ids := make(map[string]bool, len(pending))
	for _, d := range pending {
		ids[d.ID] = true
	}
	require.True(t, ids[neverVersioned])
	require.False(t, ids[upToDate])
}
