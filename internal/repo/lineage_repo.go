package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
)

type LineageRepo struct {
	db dbutil.Runner
}

func NewLineageRepo(db *sql.DB) *LineageRepo {
	return &LineageRepo{db: db}
}

func (r *LineageRepo) WithTx(tx *sql.Tx) *LineageRepo {
	return &LineageRepo{db: tx}
}

func (r *LineageRepo) Create(ctx context.Context, lineage *model.DeckLineage) error {
	data := map[string]interface{}{
		"id":                      lineage.ID,
		"parent_deck_id":          lineage.ParentDeckID,
		"child_deck_id":           lineage.ChildDeckID,
		"branch_point_version_id": lineage.BranchPointVersionID,
		"branch_name":             lineage.BranchName,
		"ctime":                   lineage.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("deck_lineage", []map[string]interface{}{data})
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

// GetByChild returns the branch record a deck was created from, if any.
func (r *LineageRepo) GetByChild(ctx context.Context, childDeckID string) (*model.DeckLineage, error) {
	where := map[string]interface{}{"child_deck_id": childDeckID}
	sqlStr, args, err := builder.BuildSelect("deck_lineage", where, lineageColumns())
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
	return scanLineage(rows)
}

func (r *LineageRepo) ListByParent(ctx context.Context, parentDeckID string) ([]model.DeckLineage, error) {
	where := map[string]interface{}{
		"parent_deck_id": parentDeckID,
		"_orderby":       "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("deck_lineage", where, lineageColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	records := make([]model.DeckLineage, 0)
	for rows.Next() {
		record, err := scanLineage(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func lineageColumns() []string {
	return []string{"id", "parent_deck_id", "child_deck_id", "branch_point_version_id", "branch_name", "ctime"}
}

func scanLineage(rows *sql.Rows) (*model.DeckLineage, error) {
	var record model.DeckLineage
	if err := rows.Scan(&record.ID, &record.ParentDeckID, &record.ChildDeckID, &record.BranchPointVersionID, &record.BranchName, &record.Ctime); err != nil {
		return nil, err
	}
	return &record, nil
}
