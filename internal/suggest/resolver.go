// Package suggest turns classifier output into merge groups that resolve
// to real tags in one scope.
package suggest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/listenupapp/tagengine/internal/classifier"
	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/ratelimit"
	"github.com/listenupapp/tagengine/internal/validation"
)

// Chunk size bounds.
const (
	DefaultChunkSize   = 150
	MinChunkSize       = 10
	MaxChunkSize       = 200
	DefaultConcurrency = 4
)

// Options configures a Resolver. Zero values take the defaults.
type Options struct {
	ChunkSize   int
	Concurrency int
	// Timeout bounds each classifier call. Zero means no per-call timeout.
	Timeout time.Duration
	Prompt  string
}

// Analysis is the result of one consolidation run. Groups may be empty;
// the counters tell "nothing to merge" apart from "nothing could be read".
type Analysis struct {
	RunID              string              `json:"run_id"`
	Groups             []domain.MergeGroup `json:"groups"`
	Chunks             int                 `json:"chunks"`
	FailedChunks       int                 `json:"failed_chunks"`
	UnparseableChunks  int                 `json:"unparseable_chunks"`
	DroppedSuggestions int                 `json:"dropped_suggestions"`
}

// Resolver chunks a scope's tag names, asks the classifier about each
// chunk, and resolves the answers against the scope's name index.
type Resolver struct {
	classifier  classifier.Classifier
	limiter     *ratelimit.KeyedRateLimiter
	validator   *validation.Validator
	logger      *slog.Logger
	chunkSize   int
	concurrency int
	timeout     time.Duration
	prompt      string
}

// NewResolver creates a resolver. limiter may be nil.
func NewResolver(c classifier.Classifier, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger, opts Options) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	return &Resolver{
		classifier:  c,
		limiter:     limiter,
		validator:   validation.New(),
		logger:      logger,
		chunkSize:   ClampChunkSize(opts.ChunkSize),
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		prompt:      opts.Prompt,
	}
}

// ClampChunkSize applies the default and the [MinChunkSize, MaxChunkSize] bounds.
func ClampChunkSize(n int) int {
	switch {
	case n <= 0:
		return DefaultChunkSize
	case n < MinChunkSize:
		return MinChunkSize
	case n > MaxChunkSize:
		return MaxChunkSize
	default:
		return n
	}
}

type chunkResult struct {
	index  int
	parsed *Parsed
	err    error
	parse  bool
}

// Analyze proposes merge groups for the given tags of one scope.
//
// Chunks run concurrently; one chunk failing never aborts the others. If
// every classifier call fails the run fails with CLASSIFIER_UNAVAILABLE.
// Unparseable responses are counted and skipped.
func (r *Resolver) Analyze(ctx context.Context, scope string, tags []*domain.Tag) (*Analysis, error) {
	idx := NewNameIndex(tags)
	chunks := chunkNames(idx.Names(), r.chunkSize)

	a := &Analysis{
		RunID:  uuid.NewString(),
		Groups: []domain.MergeGroup{},
		Chunks: len(chunks),
	}
	logger := r.logger.With("scope", scope, "run_id", a.RunID)

	if len(chunks) == 0 {
		return a, nil
	}

	results := r.dispatch(ctx, scope, chunks)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	var parsed []*Parsed
	for _, res := range results {
		switch {
		case res.err != nil && res.parse:
			a.UnparseableChunks++
			logger.Warn("classifier response unparseable", "chunk", res.index, "error", res.err)
		case res.err != nil:
			a.FailedChunks++
			if firstErr == nil {
				firstErr = res.err
			}
			logger.Warn("classifier call failed", "chunk", res.index, "error", res.err)
		default:
			a.DroppedSuggestions += res.parsed.Dropped
			parsed = append(parsed, res.parsed)
		}
	}

	if a.FailedChunks == a.Chunks {
		return nil, domainerrors.ClassifierUnavailablef("all %d classifier calls failed", a.Chunks).WithCause(firstErr)
	}

	var rs resolution
	rs.index = idx
	for _, p := range parsed {
		for _, s := range p.Suggestions {
			if !rs.add(s) {
				a.DroppedSuggestions++
			}
		}
	}
	a.Groups = rs.groups()

	logger.Info("consolidation analysis finished",
		"chunks", a.Chunks,
		"failed", a.FailedChunks,
		"unparseable", a.UnparseableChunks,
		"groups", len(a.Groups),
		"dropped", a.DroppedSuggestions,
	)
	return a, nil
}

// dispatch runs every chunk through the classifier with bounded concurrency
// and returns the results in chunk order.
func (r *Resolver) dispatch(ctx context.Context, scope string, chunks [][]string) []chunkResult {
	jobs := make(chan int)
	out := make(chan chunkResult, len(chunks))

	workers := min(r.concurrency, len(chunks))
	for range workers {
		go func() {
			for i := range jobs {
				out <- r.runChunk(ctx, scope, i, chunks[i])
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range chunks {
			jobs <- i
		}
	}()

	results := make([]chunkResult, len(chunks))
	for range chunks {
		res := <-out
		results[res.index] = res
	}
	return results
}

func (r *Resolver) runChunk(ctx context.Context, scope string, i int, chunk []string) chunkResult {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, scope); err != nil {
			return chunkResult{index: i, err: err}
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	raw, err := r.classifier.Classify(callCtx, r.prompt, chunk)
	if err != nil {
		return chunkResult{index: i, err: err}
	}

	p, err := ParseResponse(raw, r.validator)
	if err != nil {
		return chunkResult{index: i, err: err, parse: errors.Is(err, domainerrors.ErrClassifierParseFailure)}
	}
	return chunkResult{index: i, parsed: p}
}

func chunkNames(names []string, size int) [][]string {
	var out [][]string
	for len(names) > size {
		out = append(out, names[:size:size])
		names = names[size:]
	}
	if len(names) > 0 {
		out = append(out, names)
	}
	return out
}

// resolution accumulates groups in arrival order. A tag is claimed by the
// first group that names it; later groups cannot reuse it, except that a
// repeated master extends its existing group.
type resolution struct {
	index    *NameIndex
	list     []*domain.MergeGroup
	byMaster map[string]*domain.MergeGroup
	claimed  map[string]bool
}

// add resolves s and records it. It reports false when s contributed nothing.
func (rs *resolution) add(s Suggestion) bool {
	if rs.claimed == nil {
		rs.claimed = make(map[string]bool)
		rs.byMaster = make(map[string]*domain.MergeGroup)
	}

	master, ok := rs.index.Lookup(s.Master)
	if !ok {
		return false
	}
	variations := make([]domain.TagRef, 0, len(s.Variations))
	for _, name := range s.Variations {
		ref, ok := rs.index.Lookup(name)
		if !ok {
			return false
		}
		variations = append(variations, ref)
	}

	group, existing := rs.byMaster[master.ID]
	if !existing && rs.claimed[master.ID] {
		return false
	}

	seen := map[string]bool{master.ID: true}
	var fresh []domain.TagRef
	for _, v := range variations {
		if seen[v.ID] || rs.claimed[v.ID] {
			continue
		}
		seen[v.ID] = true
		fresh = append(fresh, v)
	}
	if len(fresh) == 0 {
		return false
	}

	if !existing {
		group = &domain.MergeGroup{MasterID: master.ID, MasterName: master.Name}
		rs.byMaster[master.ID] = group
		rs.list = append(rs.list, group)
		rs.claimed[master.ID] = true
	}
	for _, v := range fresh {
		rs.claimed[v.ID] = true
	}
	group.Variations = append(group.Variations, fresh...)
	return true
}

func (rs *resolution) groups() []domain.MergeGroup {
	out := make([]domain.MergeGroup, len(rs.list))
	for i, g := range rs.list {
		out[i] = *g
	}
	return out
}
