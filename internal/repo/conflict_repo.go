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
	ConflictStatePending  = 1
	ConflictStateResolved = 2
)

type ConflictRepo struct {
	db dbutil.Runner
}

func NewConflictRepo(db *sql.DB) *ConflictRepo {
	return &ConflictRepo{db: db}
}

func (r *ConflictRepo) WithTx(tx *sql.Tx) *ConflictRepo {
	return &ConflictRepo{db: tx}
}

// CreateIfAbsent inserts a pending conflict unless the same
// (source, target, slide) pair already has one pending, and reports
// whether a row was written. DO NOTHING keeps the surrounding merge
// transaction alive; a raw unique violation would abort it.
func (r *ConflictRepo) CreateIfAbsent(ctx context.Context, conflict *model.MergeConflict) (bool, error) {
	const query = `
		INSERT INTO merge_conflicts (id, source_deck_id, target_deck_id, slide_id, state, resolution, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_deck_id, target_deck_id, slide_id) WHERE state = 1 DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		conflict.ID, conflict.SourceDeckID, conflict.TargetDeckID, conflict.SlideID,
		conflict.State, conflict.Resolution, conflict.Ctime, conflict.Mtime)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ConflictRepo) GetByID(ctx context.Context, conflictID string) (*model.MergeConflict, error) {
	where := map[string]interface{}{"id": conflictID}
	sqlStr, args, err := builder.BuildSelect("merge_conflicts", where, conflictColumns())
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
	return scanConflict(rows)
}

// ListByTarget returns conflicts recorded against a deck as the merge
// target, pending first, newest within each state.
func (r *ConflictRepo) ListByTarget(ctx context.Context, targetDeckID string, onlyPending bool) ([]model.MergeConflict, error) {
	where := map[string]interface{}{
		"target_deck_id": targetDeckID,
		"_orderby":       "state asc, ctime desc",
	}
	if onlyPending {
		where["state"] = ConflictStatePending
	}
	sqlStr, args, err := builder.BuildSelect("merge_conflicts", where, conflictColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	conflicts := make([]model.MergeConflict, 0)
	for rows.Next() {
		conflict, err := scanConflict(rows)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, *conflict)
	}
	return conflicts, rows.Err()
}

// Resolve marks a pending conflict resolved; resolving a missing or
// already-resolved conflict reports ErrNotFound.
func (r *ConflictRepo) Resolve(ctx context.Context, conflictID, resolution string, mtime int64) error {
	where := map[string]interface{}{
		"id":    conflictID,
		"state": ConflictStatePending,
	}
	update := map[string]interface{}{
		"state":      ConflictStateResolved,
		"resolution": resolution,
		"mtime":      mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("merge_conflicts", where, update)
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

// DeleteResolvedBefore clears resolved conflicts older than the cutoff.
func (r *ConflictRepo) DeleteResolvedBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM merge_conflicts WHERE state = $1 AND mtime < $2`
	result, err := r.db.ExecContext(ctx, query, ConflictStateResolved, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func conflictColumns() []string {
	return []string{"id", "source_deck_id", "target_deck_id", "slide_id", "state", "resolution", "ctime", "mtime"}
}

func scanConflict(rows *sql.Rows) (*model.MergeConflict, error) {
	var conflict model.MergeConflict
	if err := rows.Scan(&conflict.ID, &conflict.SourceDeckID, &conflict.TargetDeckID, &conflict.SlideID, &conflict.State, &conflict.Resolution, &conflict.Ctime, &conflict.Mtime); err != nil {
		return nil, err
	}
	return &conflict, nil
}
