package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
)

const (
	ShareStateActive  = 1
	ShareStateRevoked = 2
)

type ShareRepo struct {
	db dbutil.Runner
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

func (r *ShareRepo) WithTx(tx *sql.Tx) *ShareRepo {
	return &ShareRepo{db: tx}
}

func (r *ShareRepo) Create(ctx context.Context, share *model.Share) error {
	data := map[string]interface{}{
		"id":      share.ID,
		"user_id": share.UserID,
		"deck_id": share.DeckID,
		"token":   share.Token,
		"state":   share.State,
		"ctime":   share.Ctime,
		"mtime":   share.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("shares", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ShareRepo) RevokeByDeck(ctx context.Context, userID, deckID string, mtime int64) error {
	where := map[string]interface{}{"user_id": userID, "deck_id": deckID, "state": ShareStateActive}
	update := map[string]interface{}{"state": ShareStateRevoked, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("shares", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*model.Share, error) {
	return r.getOne(ctx, map[string]interface{}{"token": token})
}

func (r *ShareRepo) GetActiveByDeck(ctx context.Context, userID, deckID string) (*model.Share, error) {
	return r.getOne(ctx, map[string]interface{}{
		"user_id": userID,
		"deck_id": deckID,
		"state":   ShareStateActive,
	})
}

func (r *ShareRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Share, error) {
	sqlStr, args, err := builder.BuildSelect("shares", where, []string{"id", "user_id", "deck_id", "token", "state", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var share model.Share
	if err := rows.Scan(&share.ID, &share.UserID, &share.DeckID, &share.Token, &share.State, &share.Ctime, &share.Mtime); err != nil {
		return nil, err
	}
	return &share, nil
}

type SharedDeck struct {
	ID    string
	Title string
	Theme string
	Mtime int64
	Token string
}

// ListActiveDecks joins shares with their decks for the "my shared
// decks" view.
func (r *ShareRepo) ListActiveDecks(ctx context.Context, userID string) ([]SharedDeck, error) {
	sqlStr := `
		SELECT d.id, d.title, d.theme, d.mtime, s.token
		FROM shares s
		JOIN decks d ON d.id = s.deck_id AND d.user_id = s.user_id
		WHERE s.user_id = ? AND s.state = ? AND d.state = ?
		ORDER BY d.mtime DESC
	`
	args := []interface{}{userID, ShareStateActive, DeckStateNormal}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]SharedDeck, 0)
	for rows.Next() {
		var item SharedDeck
		if err := rows.Scan(&item.ID, &item.Title, &item.Theme, &item.Mtime, &item.Token); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
