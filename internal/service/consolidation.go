package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/normalize"
	"github.com/listenupapp/tagengine/internal/plan"
	"github.com/listenupapp/tagengine/internal/search"
	"github.com/listenupapp/tagengine/internal/store"
	"github.com/listenupapp/tagengine/internal/suggest"
)

// Skip reasons added by AutoFormatAll on top of the planner's.
const (
	ReasonCanceled     = "canceled"
	ReasonUpdateFailed = "update failed"
)

// AutoFormatResult summarizes a formatting pass.
type AutoFormatResult struct {
	UpdatedCount int           `json:"updated_count"`
	Updated      []plan.Rename `json:"updated"`
	Skipped      []plan.Skip   `json:"skipped"`
}

// AutoFormatAll rewrites every tag name in scope with format (title case
// when nil) unless that would create a case-insensitive duplicate.
// Each rename commits on its own; a failed or canceled rename is reported
// as skipped and the rest still run.
func (s *TagService) AutoFormatAll(ctx context.Context, scope string, format normalize.Formatter) (*AutoFormatResult, error) {
	if format == nil {
		format = normalize.TitleCase
	}

	tags, err := s.store.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	byID := make(map[string]*domain.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	p := plan.PlanAutoFormat(tags, format)
	result := &AutoFormatResult{
		Updated: make([]plan.Rename, 0, len(p.Updates)),
		Skipped: append(make([]plan.Skip, 0, len(p.Skipped)), p.Skipped...),
	}

	for _, r := range p.Updates {
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, plan.Skip{ID: r.ID, Name: r.OldName, Reason: ReasonCanceled})
			continue
		}

		t := *byID[r.ID]
		t.Name = r.NewName
		t.EnforceColor()
		t.Touch()

		if err := s.store.UpdateTag(ctx, &t); err != nil {
			reason := ReasonUpdateFailed
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				reason = plan.ReasonExistingCollision
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				reason = ReasonCanceled
			}
			s.logger.Warn("auto-format rename skipped", "tag_id", r.ID, "name", r.OldName, "reason", reason, "error", err)
			result.Skipped = append(result.Skipped, plan.Skip{ID: r.ID, Name: r.OldName, Reason: reason})
			continue
		}
		result.Updated = append(result.Updated, r)
	}
	result.UpdatedCount = len(result.Updated)

	s.logger.Info("tags formatted",
		"scope", scope,
		"updated", result.UpdatedCount,
		"skipped", len(result.Skipped),
	)
	if result.UpdatedCount > 0 {
		s.events.Emit(events.NewTagsFormattedEvent(scope, result.UpdatedCount, len(result.Skipped)))
	}

	return result, nil
}

// AnalyzeConsolidation asks the classifier for merge suggestions over every
// tag in scope. An analysis with no groups means nothing needs merging.
func (s *TagService) AnalyzeConsolidation(ctx context.Context, scope string) (*suggest.Analysis, error) {
	if s.resolver == nil {
		return nil, domainerrors.ClassifierUnavailablef("no classifier configured")
	}

	tags, err := s.store.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	analysis, err := s.resolver.Analyze(ctx, scope, tags)
	if err != nil {
		return nil, err
	}

	s.logger.Info("consolidation analyzed",
		"scope", scope,
		"run_id", analysis.RunID,
		"tags", len(tags),
		"groups", len(analysis.Groups),
		"failed_chunks", analysis.FailedChunks,
	)
	return analysis, nil
}

// GroupOutcome is the result of applying one merge group.
type GroupOutcome struct {
	MasterID   string            `json:"master_id"`
	MasterName string            `json:"master_name"`
	Result     *MergeResult      `json:"result,omitempty"`
	Code       domainerrors.Code `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ApplyResult collects the outcome of every group in an apply run.
type ApplyResult struct {
	Outcomes []GroupOutcome `json:"outcomes"`
	Applied  int            `json:"applied"`
	Failed   int            `json:"failed"`
}

// ApplyConsolidation merges each group's variations into its master. Groups
// run in order and a failing group does not stop the rest.
func (s *TagService) ApplyConsolidation(ctx context.Context, scope string, groups []domain.MergeGroup) *ApplyResult {
	result := &ApplyResult{Outcomes: make([]GroupOutcome, 0, len(groups))}

	for _, g := range groups {
		out := GroupOutcome{MasterID: g.MasterID, MasterName: g.MasterName}

		var (
			res *MergeResult
			err = ctx.Err()
		)
		if err == nil {
			res, err = s.MergeTags(ctx, scope, g.VariationIDs(), g.MasterID)
		}

		if err != nil {
			out.Code = domainerrors.CodeOf(err)
			out.Error = err.Error()
			result.Failed++
			s.logger.Warn("merge group failed", "master_id", g.MasterID, "master_name", g.MasterName, "error", err)
		} else {
			out.Result = res
			result.Applied++
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	s.logger.Info("consolidation applied", "scope", scope, "applied", result.Applied, "failed", result.Failed)
	return result
}

// SimilarTags finds tags in scope whose names look like name without
// calling the classifier. A tag named exactly name is left out.
func (s *TagService) SimilarTags(ctx context.Context, scope, name string, limit int) ([]search.Match, error) {
	if normalize.Name(name) == "" {
		return nil, domainerrors.ErrEmptyName
	}

	tags, err := s.store.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	var exclude string
	for _, t := range tags {
		if normalize.Equal(t.Name, name) {
			exclude = t.ID
			break
		}
	}

	idx, err := search.BuildTagIndex(tags)
	if err != nil {
		return nil, fmt.Errorf("build tag index: %w", err)
	}
	defer idx.Close()

	return idx.Similar(ctx, name, exclude, limit)
}
