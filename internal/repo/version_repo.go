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

type VersionRepo struct {
	db dbutil.Runner
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) WithTx(tx *sql.Tx) *VersionRepo {
	return &VersionRepo{db: tx}
}

func (r *VersionRepo) Create(ctx context.Context, version *model.DeckVersion) error {
	snapshot, err := json.Marshal(version.Snapshot)
	if err != nil {
		return err
	}
	changes, err := json.Marshal(version.Changes)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":           version.ID,
		"deck_id":      version.DeckID,
		"user_id":      version.UserID,
		"version":      version.Version,
		"name":         version.Name,
		"description":  version.Description,
		"is_auto_save": version.IsAutoSave,
		"is_milestone": version.IsMilestone,
		"snapshot":     string(snapshot),
		"changes":      string(changes),
		"ctime":        version.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("deck_versions", []map[string]interface{}{data})
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

// GetLatest returns the newest version row including its snapshot, or
// ErrNotFound for a deck with empty history.
func (r *VersionRepo) GetLatest(ctx context.Context, deckID string) (*model.DeckVersion, error) {
	where := map[string]interface{}{
		"deck_id":  deckID,
		"_orderby": "version desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("deck_versions", where, versionColumns(true))
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
	return scanVersion(rows, true)
}

func (r *VersionRepo) GetByID(ctx context.Context, deckID, versionID string) (*model.DeckVersion, error) {
	where := map[string]interface{}{
		"id":      versionID,
		"deck_id": deckID,
	}
	sqlStr, args, err := builder.BuildSelect("deck_versions", where, versionColumns(true))
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
	return scanVersion(rows, true)
}

// List returns version rows newest-first without snapshots; the change
// log is enough for history views and snapshots can be large.
func (r *VersionRepo) List(ctx context.Context, deckID string, includeAutoSaves, milestonesOnly bool, limit, offset uint) ([]model.DeckVersion, error) {
	where := r.filterWhere(deckID, includeAutoSaves, milestonesOnly)
	where["_orderby"] = "version desc"
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("deck_versions", where, versionColumns(false))
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DeckVersion, 0)
	for rows.Next() {
		version, err := scanVersion(rows, false)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *version)
	}
	return versions, rows.Err()
}

// CountFiltered counts versions after filtering, before pagination.
func (r *VersionRepo) CountFiltered(ctx context.Context, deckID string, includeAutoSaves, milestonesOnly bool) (int, error) {
	where := r.filterWhere(deckID, includeAutoSaves, milestonesOnly)
	sqlStr, args, err := builder.BuildSelect("deck_versions", where, []string{"count(1)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VersionRepo) CountAll(ctx context.Context, deckID string) (int, error) {
	const query = `SELECT COUNT(1) FROM deck_versions WHERE deck_id = $1`
	row := r.db.QueryRowContext(ctx, query, deckID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VersionRepo) filterWhere(deckID string, includeAutoSaves, milestonesOnly bool) map[string]interface{} {
	where := map[string]interface{}{
		"deck_id": deckID,
	}
	if !includeAutoSaves {
		where["is_auto_save"] = false
	}
	if milestonesOnly {
		where["is_milestone"] = true
	}
	return where
}

// UpdateMilestone flips the milestone flag and renames the version;
// the description is only touched when one is supplied. Snapshot,
// changes and the version number stay as they are.
func (r *VersionRepo) UpdateMilestone(ctx context.Context, deckID, versionID, name string, description *string) error {
	where := map[string]interface{}{
		"id":      versionID,
		"deck_id": deckID,
	}
	update := map[string]interface{}{
		"is_milestone": true,
		"name":         name,
	}
	if description != nil {
		update["description"] = *description
	}
	sqlStr, args, err := builder.BuildUpdate("deck_versions", where, update)
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

// Prune deletes every non-milestone version outside the newest
// keepRecent ones. Milestones always survive, and so does the newest
// row since keepRecent is at least 1.
func (r *VersionRepo) Prune(ctx context.Context, deckID string, keepRecent int) (int64, error) {
	if keepRecent <= 0 {
		return 0, nil
	}
	const query = `
		DELETE FROM deck_versions
		WHERE deck_id = $1
		  AND is_milestone = FALSE
		  AND id NOT IN (
			SELECT id
			FROM deck_versions
			WHERE deck_id = $2
			  AND is_milestone = FALSE
			ORDER BY version DESC
			LIMIT $3
		  )
	`
	result, err := r.db.ExecContext(ctx, query, deckID, deckID, keepRecent)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func versionColumns(withSnapshot bool) []string {
	cols := []string{"id", "deck_id", "user_id", "version", "name", "description", "is_auto_save", "is_milestone", "changes", "ctime"}
	if withSnapshot {
		cols = append(cols, "snapshot")
	}
	return cols
}

func scanVersion(rows *sql.Rows, withSnapshot bool) (*model.DeckVersion, error) {
	var version model.DeckVersion
	var changesRaw []byte
	dest := []interface{}{
		&version.ID, &version.DeckID, &version.UserID, &version.Version,
		&version.Name, &version.Description, &version.IsAutoSave,
		&version.IsMilestone, &changesRaw, &version.Ctime,
	}
	var snapshotRaw []byte
	if withSnapshot {
		dest = append(dest, &snapshotRaw)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	if len(changesRaw) > 0 {
		if err := json.Unmarshal(changesRaw, &version.Changes); err != nil {
			return nil, err
		}
	}
	if len(snapshotRaw) > 0 {
		if err := json.Unmarshal(snapshotRaw, &version.Snapshot); err != nil {
			return nil, err
		}
	}
	return &version, nil
}
