package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/plan"
	"github.com/listenupapp/tagengine/internal/store"
)

// MergeResult summarizes a completed merge.
type MergeResult struct {
	Target               *domain.Tag `json:"target"`
	AffectedAssociations int         `json:"affected_associations"`
	DeletedTags          []string    `json:"deleted_tags"`
}

// MergeTags folds every source tag into targetID. Afterwards each content
// item that was linked to any of the tags is linked to the target exactly
// once per association table, and the source tags are gone.
//
// The target and every source stay locked for the whole merge, so merges
// that share any tag run one after the other. Calling MergeTags again with
// the same sources after it succeeded returns NOT_FOUND.
func (s *TagService) MergeTags(ctx context.Context, scope string, sourceIDs []string, targetID string) (*MergeResult, error) {
	sources, err := validateMerge(scope, sourceIDs, targetID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockTags(ctx, append([]string{targetID}, sources...))
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := s.getInScope(ctx, scope, targetID)
	if err != nil {
		return nil, err
	}
	for _, id := range sources {
		if _, err := s.getInScope(ctx, scope, id); err != nil {
			return nil, err
		}
	}

	if target.EnforceColor() {
		target.Touch()
		if err := s.store.UpdateTag(ctx, target); err != nil {
			return nil, mapStoreError(err, "tag %s", targetID)
		}
		s.logger.Warn("merge target had drifted color, corrected", "tag_id", targetID, "color", target.Color)
	}

	affected := 0
	for _, table := range domain.AssociationTables {
		n, err := s.mergeTable(ctx, table, sources, targetID)
		if err != nil {
			return nil, fmt.Errorf("merge %s associations: %w", table, err)
		}
		affected += n
	}

	for _, table := range domain.AssociationTables {
		n, err := s.sweepResidual(ctx, table, sources, targetID)
		if err != nil {
			return nil, fmt.Errorf("sweep %s associations: %w", table, err)
		}
		affected += n
	}

	deleted := make([]string, 0, len(sources))
	for _, id := range sources {
		if err := s.store.DeleteTag(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("merge source already deleted", "tag_id", id, "target_id", targetID)
				continue
			}
			return nil, mapStoreError(err, "delete source tag %s", id)
		}
		deleted = append(deleted, id)
	}

	s.logger.Info("tags merged",
		"scope", scope,
		"target_id", targetID,
		"sources", len(sources),
		"affected_associations", affected,
	)
	s.events.Emit(events.NewTagsMergedEvent(scope, targetID, deleted, affected))

	return &MergeResult{
		Target:               target,
		AffectedAssociations: affected,
		DeletedTags:          deleted,
	}, nil
}

// lockTags locks every id in sorted order and returns a func releasing
// them all. Sorted acquisition keeps overlapping merges from deadlocking.
func (s *TagService) lockTags(ctx context.Context, ids []string) (func(), error) {
	keys := slices.Compact(slices.Sorted(slices.Values(ids)))

	unlocks := make([]func(), 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, key := range keys {
		unlock, err := s.locks.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// validateMerge checks the request before any I/O and returns the source ids
// with duplicates removed, first occurrence kept.
func validateMerge(scope string, sourceIDs []string, targetID string) ([]string, error) {
	if scope == "" {
		return nil, domainerrors.Validation("scope is required")
	}
	if targetID == "" {
		return nil, domainerrors.Validation("target tag id is required")
	}
	if len(sourceIDs) == 0 {
		return nil, domainerrors.Validation("at least one source tag is required")
	}

	seen := make(map[string]bool, len(sourceIDs))
	sources := make([]string, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		if id == "" {
			return nil, domainerrors.Validation("source tag id is required")
		}
		if id == targetID {
			return nil, domainerrors.SelfMergef("cannot merge tag %s into itself", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		sources = append(sources, id)
	}
	return sources, nil
}

// mergeTable moves one table's links from every source onto the target.
// Sources are planned left to right against a shared coverage set so a
// content item linked to two sources is transferred once.
func (s *TagService) mergeTable(ctx context.Context, table domain.AssociationTable, sources []string, targetID string) (int, error) {
	all := make([]string, 0, len(sources)+1)
	all = append(all, targetID)
	all = append(all, sources...)

	links, err := s.store.FindAssociationsByTags(ctx, table, all)
	if err != nil {
		return 0, err
	}

	cov := plan.NewCoverage(links[targetID])
	affected := 0

	for _, src := range sources {
		p := cov.Plan(links[src])
		if p.Empty() {
			continue
		}

		if len(p.Transfer) > 0 {
			res, err := s.store.TransferAssociations(ctx, table, p.Transfer, src, targetID)
			if err != nil {
				return affected, err
			}
			affected += res.Total()
		}
		if len(p.Dedupe) > 0 {
			n, err := s.store.DeleteAssociations(ctx, table, p.Dedupe, src)
			if err != nil {
				return affected, err
			}
			affected += n
		}

		s.logger.Debug("source associations merged",
			"table", table,
			"source_id", src,
			"target_id", targetID,
			"transferred", len(p.Transfer),
			"deduplicated", len(p.Dedupe),
		)
	}

	return affected, nil
}

// sweepResidual moves links written to a source after mergeTable read it.
// TransferAssociations collapses any that the target already has.
func (s *TagService) sweepResidual(ctx context.Context, table domain.AssociationTable, sources []string, targetID string) (int, error) {
	links, err := s.store.FindAssociationsByTags(ctx, table, sources)
	if err != nil {
		return 0, err
	}

	affected := 0
	for _, src := range sources {
		left := links[src]
		if len(left) == 0 {
			continue
		}
		res, err := s.store.TransferAssociations(ctx, table, left, src, targetID)
		if err != nil {
			return affected, err
		}
		affected += res.Total()
		s.logger.Info("late associations swept into merge target",
			"table", table,
			"source_id", src,
			"target_id", targetID,
			"count", len(left),
		)
	}
	return affected, nil
}
