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

type LibraryRepo struct {
	db dbutil.Runner
}

func NewLibraryRepo(db *sql.DB) *LibraryRepo {
	return &LibraryRepo{db: db}
}

func (r *LibraryRepo) Create(ctx context.Context, item *model.LibraryItem) error {
	slides, err := json.Marshal(item.Slides)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":          item.ID,
		"user_id":     item.UserID,
		"name":        item.Name,
		"description": item.Description,
		"slides":      string(slides),
		"ctime":       item.Ctime,
		"mtime":       item.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("library_items", []map[string]interface{}{data})
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

func (r *LibraryRepo) GetByID(ctx context.Context, userID, itemID string) (*model.LibraryItem, error) {
	where := map[string]interface{}{
		"id":      itemID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("library_items", where, []string{"id", "user_id", "name", "description", "slides", "ctime", "mtime"})
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
	var item model.LibraryItem
	var slidesRaw []byte
	if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Description, &slidesRaw, &item.Ctime, &item.Mtime); err != nil {
		return nil, err
	}
	if len(slidesRaw) > 0 {
		if err := json.Unmarshal(slidesRaw, &item.Slides); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// List returns metadata only; slide payloads come from GetByID.
func (r *LibraryRepo) List(ctx context.Context, userID string, limit, offset uint) ([]model.LibraryItemMeta, error) {
	sqlStr := `
		SELECT id, user_id, name, description, jsonb_array_length(slides), ctime, mtime
		FROM library_items
		WHERE user_id = ?
		ORDER BY mtime DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		sqlStr += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.LibraryItemMeta, 0)
	for rows.Next() {
		var item model.LibraryItemMeta
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Description, &item.SlideCount, &item.Ctime, &item.Mtime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *LibraryRepo) Delete(ctx context.Context, userID, itemID string) error {
	where := map[string]interface{}{
		"id":      itemID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildDelete("library_items", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
