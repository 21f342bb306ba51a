package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/model"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/test/testutil"
)

func newVersion(deckID, userID string, number int, autoSave bool) *model.DeckVersion {
	return &model.DeckVersion{
		ID:         testutil.NewID(),
		DeckID:     deckID,
		UserID:     userID,
		Version:    number,
		Name:       fmt.Sprintf("Version %d", number),
		IsAutoSave: autoSave,
		Snapshot: &model.DeckSnapshot{
			Title:  "deck",
			Slides: []*model.SlideSnapshot{{ID: "s1", Content: fmt.Sprintf("rev %d", number)}},
		},
		Changes: []*model.VersionChange{},
		Ctime:   timeutil.NowUnix(),
	}
}

func TestVersionRepoCreateAndGet(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	deckID := testutil.NewID()
	userID := testutil.NewID()

	_, err := versions.GetLatest(context.Background(), deckID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	v1 := newVersion(deckID, userID, 1, false)
	require.NoError(t, versions.Create(context.Background(), v1))
	v2 := newVersion(deckID, userID, 2, false)
	require.NoError(t, versions.Create(context.Background(), v2))

	latest, err := versions.GetLatest(context.Background(), deckID)
	require.NoError(t, err)
	require.Equal(t, 2, latest.Version)
	require.NotNil(t, latest.Snapshot)
	require.Equal(t, "rev 2", latest.Snapshot.Slides[0].Content)

	fetched, err := versions.GetByID(context.Background(), deckID, v1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fetched.Version)
	require.NotNil(t, fetched.Snapshot)

	_, err = versions.GetByID(context.Background(), testutil.NewID(), v1.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	// duplicate version number for the same deck violates history ordering
	dup := newVersion(deckID, userID, 2, false)
	require.Error(t, versions.Create(context.Background(), dup))
}

func TestVersionRepoListFilters(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	deckID := testutil.NewID()
	userID := testutil.NewID()

	require.NoError(t, versions.Create(context.Background(), newVersion(deckID, userID, 1, false)))
	require.NoError(t, versions.Create(context.Background(), newVersion(deckID, userID, 2, true)))
	milestone := newVersion(deckID, userID, 3, false)
	milestone.IsMilestone = true
	require.NoError(t, versions.Create(context.Background(), milestone))

	items, err := versions.List(context.Background(), deckID, false, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 3, items[0].Version)
	require.Equal(t, 1, items[1].Version)
	// list omits the snapshot payload
	require.Nil(t, items[0].Snapshot)

	items, err = versions.List(context.Background(), deckID, true, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	items, err = versions.List(context.Background(), deckID, true, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].IsMilestone)

	total, err := versions.CountFiltered(context.Background(), deckID, false, false)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	total, err = versions.CountAll(context.Background(), deckID)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	items, err = versions.List(context.Background(), deckID, true, false, 1, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Version)
}

func TestVersionRepoUpdateMilestone(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	deckID := testutil.NewID()
	userID := testutil.NewID()
	v := newVersion(deckID, userID, 1, false)
	require.NoError(t, versions.Create(context.Background(), v))

	desc := "final cut"
	require.NoError(t, versions.UpdateMilestone(context.Background(), deckID, v.ID, "Launch deck", &desc))

	fetched, err := versions.GetByID(context.Background(), deckID, v.ID)
	require.NoError(t, err)
	require.True(t, fetched.IsMilestone)
	require.Equal(t, "Launch deck", fetched.Name)
	require.Equal(t, "final cut", fetched.Description)
	// snapshot untouched
	require.Equal(t, "rev 1", fetched.Snapshot.Slides[0].Content)

	err = versions.UpdateMilestone(context.Background(), deckID, testutil.NewID(), "x", nil)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestVersionRepoPruneKeepsMilestonesAndRecent(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	deckID := testutil.NewID()
	userID := testutil.NewID()

	for i := 1; i <= 10; i++ {
		v := newVersion(deckID, userID, i, false)
		if i == 2 {
			v.IsMilestone = true
		}
		require.NoError(t, versions.Create(context.Background(), v))
	}

	removed, err := versions.Prune(context.Background(), deckID, 3)
	require.NoError(t, err)
	require.Equal(t, int64(6), removed)

	items, err := versions.List(context.Background(), deckID, true, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 4)
	numbers := make([]int, 0, len(items))
	for _, v := range items {
		numbers = append(numbers, v.Version)
	}
	require.Equal(t, []int{10, 9, 8, 2}, numbers)
}
