package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mslide/internal/metrics"
	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
)

const (
	MergeSourceWins = "source_wins"
	MergeTargetWins = "target_wins"
	MergeManual     = "manual"
)

const (
	ResolutionSource = "source"
	ResolutionTarget = "target"
)

const (
	defaultPruneThreshold  = 100
	defaultPruneKeep       = 50
	defaultVersionPageSize = 20
	defaultAutoSaveBatch   = 20

	compareCacheSize = 256
	compareCacheTTL  = 10 * time.Minute
)

// VersionService owns deck history: checkpoints, restore, comparison,
// milestones, branching and merging. Every mutating operation runs in a
// transaction and takes a row lock on the deck(s) involved, so history
// writes for one deck are serialized while reads stay concurrent.
type VersionService struct {
	db             *sql.DB
	decks          *repo.DeckRepo
	slides         *repo.SlideRepo
	versions       *repo.VersionRepo
	lineage        *repo.LineageRepo
	conflicts      *repo.ConflictRepo
	users          *repo.UserRepo
	metrics        *metrics.Metrics
	compareCache   *expirable.LRU[string, *model.VersionComparison]
	pruneThreshold int
	pruneKeep      int
}

func NewVersionService(db *sql.DB, decks *repo.DeckRepo, slides *repo.SlideRepo, versions *repo.VersionRepo, lineage *repo.LineageRepo, conflicts *repo.ConflictRepo, users *repo.UserRepo, m *metrics.Metrics, pruneThreshold, pruneKeep int) *VersionService {
	if pruneThreshold <= 0 {
		pruneThreshold = defaultPruneThreshold
	}
	if pruneKeep <= 0 {
		pruneKeep = defaultPruneKeep
	}
	return &VersionService{
		db:             db,
		decks:          decks,
		slides:         slides,
		versions:       versions,
		lineage:        lineage,
		conflicts:      conflicts,
		users:          users,
		metrics:        m,
		compareCache:   expirable.NewLRU[string, *model.VersionComparison](compareCacheSize, nil, compareCacheTTL),
		pruneThreshold: pruneThreshold,
		pruneKeep:      pruneKeep,
	}
}

type CreateVersionInput struct {
	Name        string
	Description string
	IsAutoSave  bool
}

type ListVersionsInput struct {
	Limit            uint
	Offset           uint
	IncludeAutoSaves bool
	MilestonesOnly   bool
}

type MarkMilestoneInput struct {
	Name        string
	Description string
}

type VersionPage struct {
	Items []model.DeckVersion `json:"items"`
	Total int                 `json:"total"`
}

type RestoreResult struct {
	Deck          *model.Deck        `json:"deck"`
	Slides        []model.Slide      `json:"slides"`
	BackupVersion *model.DeckVersion `json:"backup_version"`
}

type BranchResult struct {
	BranchID string      `json:"branch_id"`
	Deck     *model.Deck `json:"deck"`
}

type MergeInput struct {
	SourceDeckID string
	TargetDeckID string
	Strategy     string
	SlideIDs     []string
}

type MergeResult struct {
	MergedCount   int `json:"merged_count"`
	ConflictCount int `json:"conflict_count"`
}

type LineageView struct {
	Parent   *model.DeckLineage  `json:"parent,omitempty"`
	Branches []model.DeckLineage `json:"branches"`
}

// CreateVersion snapshots the live deck into a new history entry. The
// deck row is locked for the duration, so concurrent calls line up and
// version numbers come out gapless. The change log is computed against
// the previous latest version, or a single synthetic "initial version"
// entry when history is empty.
func (s *VersionService) CreateVersion(ctx context.Context, userID, deckID string, input CreateVersionInput) (*model.DeckVersion, error) {
	now := timeutil.NowUnix()
	var created *model.DeckVersion
	var pruned int64
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		deck, err := s.decks.WithTx(tx).GetForUpdate(ctx, userID, deckID)
		if err != nil {
			return err
		}
		liveSlides, err := s.slides.WithTx(tx).ListByDeck(ctx, deckID)
		if err != nil {
			return err
		}
		snapshot := buildSnapshot(deck, liveSlides)

		number := 1
		var prevSnapshot *model.DeckSnapshot
		latest, err := s.versions.WithTx(tx).GetLatest(ctx, deckID)
		switch {
		case err == nil:
			// MAX+1 rather than count+1: pruning removes rows but a
			// version number must never be reused.
			number = latest.Version + 1
			prevSnapshot = latest.Snapshot
		case appErr.IsNotFound(err):
		default:
			return err
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			if input.IsAutoSave {
				name = "Auto-save"
			} else {
				name = fmt.Sprintf("Version %d", number)
			}
		}
		version := &model.DeckVersion{
			ID:          newVersionID(),
			DeckID:      deckID,
			UserID:      userID,
			Version:     number,
			Name:        name,
			Description: input.Description,
			IsAutoSave:  input.IsAutoSave,
			Snapshot:    snapshot,
			Changes:     detectChanges(prevSnapshot, snapshot),
			Ctime:       now,
		}
		if err := s.versions.WithTx(tx).Create(ctx, version); err != nil {
			return err
		}
		pruned, err = s.pruneLocked(ctx, tx, deckID)
		if err != nil {
			return err
		}
		created = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		kind := metrics.KindManual
		if input.IsAutoSave {
			kind = metrics.KindAutoSave
		}
		s.metrics.VersionsCreated.WithLabelValues(kind).Inc()
		if pruned > 0 {
			s.metrics.VersionsPruned.Add(float64(pruned))
		}
	}
	if pruned > 0 {
		logutil.GetLogger(ctx).Info("pruned version history",
			zap.String("deck_id", deckID), zap.Int64("removed", pruned))
	}
	s.attachAuthor(ctx, created)
	return created, nil
}

// pruneLocked enforces the history cap inside the caller's transaction.
// Milestones are never removed; of the rest only the newest pruneKeep
// survive. The version just written is by definition the newest, so it
// always survives its own prune.
func (s *VersionService) pruneLocked(ctx context.Context, tx *sql.Tx, deckID string) (int64, error) {
	total, err := s.versions.WithTx(tx).CountAll(ctx, deckID)
	if err != nil {
		return 0, err
	}
	if total <= s.pruneThreshold {
		return 0, nil
	}
	return s.versions.WithTx(tx).Prune(ctx, deckID, s.pruneKeep)
}

// ListVersions pages through a deck's history newest-first. Auto-saves
// are hidden unless asked for; snapshots are omitted from list rows.
func (s *VersionService) ListVersions(ctx context.Context, userID, deckID string, input ListVersionsInput) (*VersionPage, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultVersionPageSize
	}
	items, err := s.versions.List(ctx, deckID, input.IncludeAutoSaves, input.MilestonesOnly, limit, input.Offset)
	if err != nil {
		return nil, err
	}
	total, err := s.versions.CountFiltered(ctx, deckID, input.IncludeAutoSaves, input.MilestonesOnly)
	if err != nil {
		return nil, err
	}
	return &VersionPage{Items: s.attachAuthors(ctx, items), Total: total}, nil
}

func (s *VersionService) GetVersion(ctx context.Context, userID, deckID, versionID string) (*model.DeckVersion, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	version, err := s.versions.GetByID(ctx, deckID, versionID)
	if err != nil {
		return nil, err
	}
	s.attachAuthor(ctx, version)
	return version, nil
}

// RestoreVersion rewinds the live deck to a stored snapshot. In one
// transaction it (1) writes a backup version of the current state so
// nothing is lost, (2) replaces the slides wholesale with the target
// snapshot's slides, keeping their ids, and (3) applies the snapshot's
// settings. The backup is the checkpoint for the restored state; no
// second version entry is written.
func (s *VersionService) RestoreVersion(ctx context.Context, userID, deckID, versionID string) (*RestoreResult, error) {
	now := timeutil.NowUnix()
	var result *RestoreResult
	var pruned int64
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		deck, err := s.decks.WithTx(tx).GetForUpdate(ctx, userID, deckID)
		if err != nil {
			return err
		}
		target, err := s.versions.WithTx(tx).GetByID(ctx, deckID, versionID)
		if err != nil {
			return err
		}
		liveSlides, err := s.slides.WithTx(tx).ListByDeck(ctx, deckID)
		if err != nil {
			return err
		}
		currentSnapshot := buildSnapshot(deck, liveSlides)

		// target exists, so history cannot be empty here
		latest, err := s.versions.WithTx(tx).GetLatest(ctx, deckID)
		if err != nil {
			return err
		}
		backup := &model.DeckVersion{
			ID:          newVersionID(),
			DeckID:      deckID,
			UserID:      userID,
			Version:     latest.Version + 1,
			Name:        "Backup before restore",
			Description: fmt.Sprintf("State before restoring %q", target.Name),
			Snapshot:    currentSnapshot,
			Changes:     detectChanges(latest.Snapshot, currentSnapshot),
			Ctime:       now,
		}
		if err := s.versions.WithTx(tx).Create(ctx, backup); err != nil {
			return err
		}
		pruned, err = s.pruneLocked(ctx, tx, deckID)
		if err != nil {
			return err
		}

		if err := s.slides.WithTx(tx).DeleteByDeck(ctx, deckID); err != nil {
			return err
		}
		restored := slidesFromSnapshot(deckID, target.Snapshot.Slides, now)
		if len(restored) > 0 {
			if err := s.slides.WithTx(tx).BulkCreate(ctx, restored); err != nil {
				return err
			}
		}
		settings := model.DeckSettings{
			Title:       target.Snapshot.Title,
			Description: target.Snapshot.Description,
			Theme:       target.Snapshot.Theme,
		}
		if err := s.decks.WithTx(tx).UpdateSettings(ctx, userID, deckID, settings, now); err != nil {
			return err
		}

		deck.Title = settings.Title
		deck.Description = settings.Description
		deck.Theme = settings.Theme
		deck.Mtime = now
		out := make([]model.Slide, 0, len(restored))
		for _, slide := range restored {
			out = append(out, *slide)
		}
		result = &RestoreResult{Deck: deck, Slides: out, BackupVersion: backup}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.VersionsRestored.Inc()
		s.metrics.VersionsCreated.WithLabelValues(metrics.KindBackup).Inc()
		if pruned > 0 {
			s.metrics.VersionsPruned.Add(float64(pruned))
		}
	}
	logutil.GetLogger(ctx).Info("deck restored",
		zap.String("deck_id", deckID), zap.String("version_id", versionID),
		zap.Int("slides", len(result.Slides)))
	s.attachAuthor(ctx, result.BackupVersion)
	return result, nil
}

// CompareVersions diffs two stored snapshots slide by slide, including
// unchanged slides. Snapshots are immutable, so results are cached.
func (s *VersionService) CompareVersions(ctx context.Context, userID, deckID, fromVersionID, toVersionID string) (*model.VersionComparison, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	cacheKey := deckID + "/" + fromVersionID + "/" + toVersionID
	if cached, ok := s.compareCache.Get(cacheKey); ok {
		return cached, nil
	}
	from, err := s.versions.GetByID(ctx, deckID, fromVersionID)
	if err != nil {
		return nil, err
	}
	to, err := s.versions.GetByID(ctx, deckID, toVersionID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	diffs, summary := compareSnapshots(from.Snapshot, to.Snapshot)
	if s.metrics != nil {
		s.metrics.DiffDuration.Observe(time.Since(start).Seconds())
		s.metrics.VersionsCompared.Inc()
	}
	comparison := &model.VersionComparison{
		DeckID:        deckID,
		FromVersionID: fromVersionID,
		ToVersionID:   toVersionID,
		Slides:        diffs,
		Summary:       summary,
	}
	s.compareCache.Add(cacheKey, comparison)
	return comparison, nil
}

// MarkMilestone flags a version as a named milestone. Snapshot, changes
// and version number stay untouched; only name, description and the
// milestone flag move. A plain UPDATE is atomic, no deck lock needed.
func (s *VersionService) MarkMilestone(ctx context.Context, userID, deckID, versionID string, input MarkMilestoneInput) (*model.DeckVersion, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	var description *string
	if input.Description != "" {
		description = &input.Description
	}
	if err := s.versions.UpdateMilestone(ctx, deckID, versionID, name, description); err != nil {
		return nil, err
	}
	version, err := s.versions.GetByID(ctx, deckID, versionID)
	if err != nil {
		return nil, err
	}
	s.attachAuthor(ctx, version)
	return version, nil
}

// CreateBranch forks a stored snapshot into a brand-new deck titled
// after the branch, with its own empty history, and records the lineage
// row linking child to parent. Slide ids are kept so a later merge back
// can match slides across the two decks.
func (s *VersionService) CreateBranch(ctx context.Context, userID, deckID, versionID, branchName string) (*BranchResult, error) {
	branchName = strings.TrimSpace(branchName)
	if branchName == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	var result *BranchResult
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.decks.WithTx(tx).GetByID(ctx, userID, deckID); err != nil {
			return err
		}
		version, err := s.versions.WithTx(tx).GetByID(ctx, deckID, versionID)
		if err != nil {
			return err
		}
		branch := &model.Deck{
			ID:          newID(),
			UserID:      userID,
			Title:       branchName,
			Description: version.Snapshot.Description,
			Theme:       version.Snapshot.Theme,
			State:       repo.DeckStateNormal,
			Ctime:       now,
			Mtime:       now,
		}
		if err := s.decks.WithTx(tx).Create(ctx, branch); err != nil {
			return err
		}
		branchSlides := slidesFromSnapshot(branch.ID, version.Snapshot.Slides, now)
		if len(branchSlides) > 0 {
			if err := s.slides.WithTx(tx).BulkCreate(ctx, branchSlides); err != nil {
				return err
			}
		}
		line := &model.DeckLineage{
			ID:                   newID(),
			ParentDeckID:         deckID,
			ChildDeckID:          branch.ID,
			BranchPointVersionID: versionID,
			BranchName:           branchName,
			Ctime:                now,
		}
		if err := s.lineage.WithTx(tx).Create(ctx, line); err != nil {
			return err
		}
		result = &BranchResult{BranchID: line.ID, Deck: branch}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("branch created",
		zap.String("deck_id", deckID), zap.String("version_id", versionID),
		zap.String("branch_deck_id", result.Deck.ID))
	return result, nil
}

// Merge copies slides from one deck into another. Slides missing from
// the target are always copied; for slides present in both with
// different content the strategy decides: source_wins overwrites,
// target_wins keeps the target (still counted as handled), manual
// records a pending conflict instead of touching anything. Both deck
// rows are locked in sorted id order so two crossing merges cannot
// deadlock.
func (s *VersionService) Merge(ctx context.Context, userID string, input MergeInput) (*MergeResult, error) {
	switch input.Strategy {
	case MergeSourceWins, MergeTargetWins, MergeManual:
	default:
		return nil, appErr.ErrInvalid
	}
	if input.SourceDeckID == "" || input.TargetDeckID == "" || input.SourceDeckID == input.TargetDeckID {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	result := &MergeResult{}
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		lockOrder := []string{input.SourceDeckID, input.TargetDeckID}
		sort.Strings(lockOrder)
		for _, id := range lockOrder {
			if _, err := s.decks.WithTx(tx).GetForUpdate(ctx, userID, id); err != nil {
				return err
			}
		}
		sourceSlides, err := s.slides.WithTx(tx).ListByDeck(ctx, input.SourceDeckID)
		if err != nil {
			return err
		}
		targetSlides, err := s.slides.WithTx(tx).ListByDeck(ctx, input.TargetDeckID)
		if err != nil {
			return err
		}

		var wanted map[string]struct{}
		if len(input.SlideIDs) > 0 {
			wanted = make(map[string]struct{}, len(input.SlideIDs))
			for _, id := range input.SlideIDs {
				wanted[id] = struct{}{}
			}
		}
		targets := make(map[string]*model.Slide, len(targetSlides))
		for i := range targetSlides {
			targets[targetSlides[i].ID] = &targetSlides[i]
		}

		var added []*model.Slide
		touched := false
		for i := range sourceSlides {
			src := &sourceSlides[i]
			if wanted != nil {
				if _, ok := wanted[src.ID]; !ok {
					continue
				}
			}
			tgt, exists := targets[src.ID]
			if !exists {
				added = append(added, &model.Slide{
					ID:       src.ID,
					DeckID:   input.TargetDeckID,
					Content:  src.Content,
					Layout:   src.Layout,
					Style:    copyStyle(src.Style),
					Notes:    src.Notes,
					Position: src.Position,
					Ctime:    now,
					Mtime:    now,
				})
				result.MergedCount++
				continue
			}
			if len(slideFieldChanges(slideState(src), slideState(tgt))) == 0 {
				continue // identical in both decks, nothing to merge
			}
			switch input.Strategy {
			case MergeSourceWins:
				tgt.Content = src.Content
				tgt.Layout = src.Layout
				tgt.Style = copyStyle(src.Style)
				tgt.Notes = src.Notes
				tgt.Position = src.Position
				tgt.Mtime = now
				if err := s.slides.WithTx(tx).Update(ctx, tgt); err != nil {
					return err
				}
				result.MergedCount++
				touched = true
			case MergeTargetWins:
				result.MergedCount++
			case MergeManual:
				conflict := &model.MergeConflict{
					ID:           newConflictID(),
					SourceDeckID: input.SourceDeckID,
					TargetDeckID: input.TargetDeckID,
					SlideID:      src.ID,
					State:        repo.ConflictStatePending,
					Ctime:        now,
					Mtime:        now,
				}
				if _, err := s.conflicts.WithTx(tx).CreateIfAbsent(ctx, conflict); err != nil {
					return err
				}
				result.ConflictCount++
			}
		}
		if len(added) > 0 {
			if err := s.slides.WithTx(tx).BulkCreate(ctx, added); err != nil {
				return err
			}
			touched = true
		}
		if touched {
			if err := s.decks.WithTx(tx).Touch(ctx, userID, input.TargetDeckID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MergesTotal.WithLabelValues(input.Strategy).Inc()
		if result.ConflictCount > 0 {
			s.metrics.MergeConflicts.Add(float64(result.ConflictCount))
		}
	}
	logutil.GetLogger(ctx).Info("decks merged",
		zap.String("source_deck_id", input.SourceDeckID),
		zap.String("target_deck_id", input.TargetDeckID),
		zap.String("strategy", input.Strategy),
		zap.Int("merged", result.MergedCount),
		zap.Int("conflicts", result.ConflictCount))
	return result, nil
}

func (s *VersionService) ListConflicts(ctx context.Context, userID, deckID string, onlyPending bool) ([]model.MergeConflict, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	return s.conflicts.ListByTarget(ctx, deckID, onlyPending)
}

// ResolveConflict settles one pending merge conflict. Choosing "source"
// copies the current source slide into the target (recreating it if the
// target slide is gone); choosing "target" keeps the target untouched.
// Resolving an already-resolved conflict reports ErrNotFound.
func (s *VersionService) ResolveConflict(ctx context.Context, userID, conflictID, choice string) (*model.MergeConflict, error) {
	if choice != ResolutionSource && choice != ResolutionTarget {
		return nil, appErr.ErrInvalid
	}
	conflict, err := s.conflicts.GetByID(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	err = dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.decks.WithTx(tx).GetForUpdate(ctx, userID, conflict.TargetDeckID); err != nil {
			return err
		}
		if choice == ResolutionSource {
			src, err := s.slides.WithTx(tx).Get(ctx, conflict.SourceDeckID, conflict.SlideID)
			if err != nil {
				return err
			}
			tgt, err := s.slides.WithTx(tx).Get(ctx, conflict.TargetDeckID, conflict.SlideID)
			switch {
			case err == nil:
				tgt.Content = src.Content
				tgt.Layout = src.Layout
				tgt.Style = copyStyle(src.Style)
				tgt.Notes = src.Notes
				tgt.Position = src.Position
				tgt.Mtime = now
				if err := s.slides.WithTx(tx).Update(ctx, tgt); err != nil {
					return err
				}
			case appErr.IsNotFound(err):
				copied := &model.Slide{
					ID:       src.ID,
					DeckID:   conflict.TargetDeckID,
					Content:  src.Content,
					Layout:   src.Layout,
					Style:    copyStyle(src.Style),
					Notes:    src.Notes,
					Position: src.Position,
					Ctime:    now,
					Mtime:    now,
				}
				if err := s.slides.WithTx(tx).BulkCreate(ctx, []*model.Slide{copied}); err != nil {
					return err
				}
			default:
				return err
			}
			if err := s.decks.WithTx(tx).Touch(ctx, userID, conflict.TargetDeckID, now); err != nil {
				return err
			}
		}
		return s.conflicts.WithTx(tx).Resolve(ctx, conflictID, choice, now)
	})
	if err != nil {
		return nil, err
	}
	conflict.State = repo.ConflictStateResolved
	conflict.Resolution = choice
	conflict.Mtime = now
	return conflict, nil
}

// GetLineage reports where a deck was branched from (if anywhere) and
// the branches forked off it.
func (s *VersionService) GetLineage(ctx context.Context, userID, deckID string) (*LineageView, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	view := &LineageView{}
	parent, err := s.lineage.GetByChild(ctx, deckID)
	switch {
	case err == nil:
		view.Parent = parent
	case appErr.IsNotFound(err):
	default:
		return nil, err
	}
	branches, err := s.lineage.ListByParent(ctx, deckID)
	if err != nil {
		return nil, err
	}
	view.Branches = branches
	return view, nil
}

// AutoSaveSweep checkpoints decks edited since their last version. A
// version is written even when the diff comes out empty, so the deck
// stops showing up as pending on the next sweep.
func (s *VersionService) AutoSaveSweep(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		max = defaultAutoSaveBatch
	}
	pending, err := s.decks.ListAutoSavePending(ctx, max)
	if err != nil {
		return 0, err
	}
	saved := 0
	for i := range pending {
		deck := &pending[i]
		if _, err := s.CreateVersion(ctx, deck.UserID, deck.ID, CreateVersionInput{IsAutoSave: true}); err != nil {
			logutil.GetLogger(ctx).Error("auto-save version failed",
				zap.String("deck_id", deck.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func (s *VersionService) attachAuthor(ctx context.Context, version *model.DeckVersion) {
	if version == nil || version.UserID == "" {
		return
	}
	user, err := s.users.GetByID(ctx, version.UserID)
	if err != nil {
		logutil.GetLogger(ctx).Warn("attach version author failed",
			zap.String("user_id", version.UserID), zap.Error(err))
		return
	}
	version.CreatedBy = &model.UserRef{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}
}

func (s *VersionService) attachAuthors(ctx context.Context, items []model.DeckVersion) []model.DeckVersion {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.UserID == "" {
			continue
		}
		if _, ok := seen[item.UserID]; ok {
			continue
		}
		seen[item.UserID] = struct{}{}
		ids = append(ids, item.UserID)
	}
	if len(ids) == 0 {
		return items
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		logutil.GetLogger(ctx).Warn("attach version authors failed", zap.Error(err))
		return items
	}
	refs := make(map[string]*model.UserRef, len(users))
	for _, user := range users {
		refs[user.ID] = &model.UserRef{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}
	}
	for i := range items {
		items[i].CreatedBy = refs[items[i].UserID]
	}
	return items
}

func slideState(s *model.Slide) *model.SlideSnapshot {
	return &model.SlideSnapshot{
		ID:       s.ID,
		Content:  s.Content,
		Layout:   s.Layout,
		Style:    s.Style,
		Notes:    s.Notes,
		Position: s.Position,
	}
}

func slidesFromSnapshot(deckID string, snaps []*model.SlideSnapshot, now int64) []*model.Slide {
	out := make([]*model.Slide, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, &model.Slide{
			ID:       snap.ID,
			DeckID:   deckID,
			Content:  snap.Content,
			Layout:   snap.Layout,
			Style:    copyStyle(snap.Style),
			Notes:    snap.Notes,
			Position: snap.Position,
			Ctime:    now,
			Mtime:    now,
		})
	}
	return out
}
