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
	DeckStateNormal  = 1
	DeckStateDeleted = 2
)

type DeckRepo struct {
	db dbutil.Runner
}

func NewDeckRepo(db *sql.DB) *DeckRepo {
	return &DeckRepo{db: db}
}

// WithTx returns a repo bound to tx so deck reads/writes join an open
// transaction.
func (r *DeckRepo) WithTx(tx *sql.Tx) *DeckRepo {
	return &DeckRepo{db: tx}
}

func (r *DeckRepo) Create(ctx context.Context, deck *model.Deck) error {
	data := map[string]interface{}{
		"id":          deck.ID,
		"user_id":     deck.UserID,
		"title":       deck.Title,
		"description": deck.Description,
		"theme":       deck.Theme,
		"state":       deck.State,
		"ctime":       deck.Ctime,
		"mtime":       deck.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("decks", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DeckRepo) GetByID(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	where := map[string]interface{}{
		"id":      deckID,
		"user_id": userID,
		"state":   DeckStateNormal,
	}
	sqlStr, args, err := builder.BuildSelect("decks", where, deckColumns())
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
	return scanDeck(rows)
}

// GetAny loads a deck regardless of owner; used for public share reads.
func (r *DeckRepo) GetAny(ctx context.Context, deckID string) (*model.Deck, error) {
	where := map[string]interface{}{
		"id":    deckID,
		"state": DeckStateNormal,
	}
	sqlStr, args, err := builder.BuildSelect("decks", where, deckColumns())
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
	return scanDeck(rows)
}

// GetForUpdate locks the deck row until the surrounding transaction
// ends, serializing mutating history operations per deck.
func (r *DeckRepo) GetForUpdate(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	const query = `
		SELECT id, user_id, title, description, theme, state, ctime, mtime
		FROM decks
		WHERE id = $1 AND user_id = $2 AND state = $3
		FOR UPDATE
	`
	rows, err := r.db.QueryContext(ctx, query, deckID, userID, DeckStateNormal)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanDeck(rows)
}

func (r *DeckRepo) List(ctx context.Context, userID, search string, limit, offset uint) ([]model.Deck, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"state":    DeckStateNormal,
		"_orderby": "mtime desc",
	}
	if search != "" {
		like := "%" + search + "%"
		where["_custom_search"] = builder.Custom("(title LIKE ? OR description LIKE ?)", like, like)
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("decks", where, deckColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	decks := make([]model.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

func (r *DeckRepo) Count(ctx context.Context, userID, search string) (int, error) {
	query := "SELECT COUNT(1) FROM decks WHERE user_id = ? AND state = ?"
	args := []interface{}{userID, DeckStateNormal}
	if search != "" {
		like := "%" + search + "%"
		query += " AND (title LIKE ? OR description LIKE ?)"
		args = append(args, like, like)
	}
	query, args = dbutil.Finalize(query, args)
	row := r.db.QueryRowContext(ctx, query, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DeckRepo) UpdateSettings(ctx context.Context, userID, deckID string, settings model.DeckSettings, mtime int64) error {
	where := map[string]interface{}{
		"id":      deckID,
		"user_id": userID,
		"state":   DeckStateNormal,
	}
	update := map[string]interface{}{
		"title":       settings.Title,
		"description": settings.Description,
		"theme":       settings.Theme,
		"mtime":       mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("decks", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DeckRepo) Touch(ctx context.Context, userID, deckID string, mtime int64) error {
	where := map[string]interface{}{
		"id":      deckID,
		"user_id": userID,
		"state":   DeckStateNormal,
	}
	update := map[string]interface{}{
		"mtime": mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("decks", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DeckRepo) Delete(ctx context.Context, userID, deckID string, mtime int64) error {
	where := map[string]interface{}{
		"id":      deckID,
		"user_id": userID,
		"state":   DeckStateNormal,
	}
	update := map[string]interface{}{
		"state": DeckStateDeleted,
		"mtime": mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("decks", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListAutoSavePending returns decks modified after their latest version
// was captured (or never versioned at all), oldest modification first.
func (r *DeckRepo) ListAutoSavePending(ctx context.Context, limit int) ([]model.Deck, error) {
	const query = `
		SELECT d.id, d.user_id, d.title, d.description, d.theme, d.state, d.ctime, d.mtime
		FROM decks d
		WHERE d.state = $1
		  AND d.mtime > COALESCE((SELECT MAX(v.ctime) FROM deck_versions v WHERE v.deck_id = d.id), 0)
		ORDER BY d.mtime ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, DeckStateNormal, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	decks := make([]model.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

func deckColumns() []string {
	return []string{"id", "user_id", "title", "description", "theme", "state", "ctime", "mtime"}
}

func scanDeck(rows *sql.Rows) (*model.Deck, error) {
	var deck model.Deck
	if err := rows.Scan(&deck.ID, &deck.UserID, &deck.Title, &deck.Description, &deck.Theme, &deck.State, &deck.Ctime, &deck.Mtime); err != nil {
		return nil, err
	}
	return &deck, nil
}
