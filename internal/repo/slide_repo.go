package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
)

type SlideRepo struct {
	db dbutil.Runner
}

func NewSlideRepo(db *sql.DB) *SlideRepo {
	return &SlideRepo{db: db}
}

func (r *SlideRepo) WithTx(tx *sql.Tx) *SlideRepo {
	return &SlideRepo{db: tx}
}

func (r *SlideRepo) BulkCreate(ctx context.Context, slides []*model.Slide) error {
	if len(slides) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(slides))
	for _, slide := range slides {
		style, err := encodeStyle(slide.Style)
		if err != nil {
			return err
		}
		data = append(data, map[string]interface{}{
			"deck_id": slide.DeckID,
			"id":      slide.ID,
			"content": slide.Content,
			"layout":  slide.Layout,
			"style":   style,
			"notes":   slide.Notes,
			"pos":     slide.Position,
			"ctime":   slide.Ctime,
			"mtime":   slide.Mtime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("slides", data)
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

func (r *SlideRepo) Get(ctx context.Context, deckID, slideID string) (*model.Slide, error) {
	where := map[string]interface{}{
		"deck_id": deckID,
		"id":      slideID,
	}
	sqlStr, args, err := builder.BuildSelect("slides", where, slideColumns())
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
	return scanSlide(rows)
}

func (r *SlideRepo) ListByDeck(ctx context.Context, deckID string) ([]model.Slide, error) {
	where := map[string]interface{}{
		"deck_id":  deckID,
		"_orderby": "pos asc",
	}
	sqlStr, args, err := builder.BuildSelect("slides", where, slideColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	slides := make([]model.Slide, 0)
	for rows.Next() {
		slide, err := scanSlide(rows)
		if err != nil {
			return nil, err
		}
		slides = append(slides, *slide)
	}
	return slides, rows.Err()
}

// Update overwrites the mutable fields of one slide.
func (r *SlideRepo) Update(ctx context.Context, slide *model.Slide) error {
	style, err := encodeStyle(slide.Style)
	if err != nil {
		return err
	}
	where := map[string]interface{}{
		"deck_id": slide.DeckID,
		"id":      slide.ID,
	}
	update := map[string]interface{}{
		"content": slide.Content,
		"layout":  slide.Layout,
		"style":   style,
		"notes":   slide.Notes,
		"pos":     slide.Position,
		"mtime":   slide.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("slides", where, update)
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

func (r *SlideRepo) DeleteByDeck(ctx context.Context, deckID string) error {
	where := map[string]interface{}{
		"deck_id": deckID,
	}
	sqlStr, args, err := builder.BuildDelete("slides", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func slideColumns() []string {
	return []string{"deck_id", "id", "content", "layout", "style", "notes", "pos", "ctime", "mtime"}
}

func scanSlide(rows *sql.Rows) (*model.Slide, error) {
	var slide model.Slide
	var styleRaw []byte
	if err := rows.Scan(&slide.DeckID, &slide.ID, &slide.Content, &slide.Layout, &styleRaw, &slide.Notes, &slide.Position, &slide.Ctime, &slide.Mtime); err != nil {
		return nil, err
	}
	if len(styleRaw) > 0 {
		if err := json.Unmarshal(styleRaw, &slide.Style); err != nil {
			return nil, err
		}
	}
	return &slide, nil
}

// encodeStyle renders the style map as a JSON string so the driver
// hands Postgres text it can coerce to jsonb; nil stays NULL.
func encodeStyle(style map[string]interface{}) (interface{}, error) {
	if style == nil {
		return nil, nil
	}
	data, err := json.Marshal(style)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
